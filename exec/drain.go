package exec

import (
	"errors"
	"fmt"
	"io"
)

// ChunkSize is the size of each blocking read issued by Drain.
const ChunkSize = 1024

// Drain reads r until end-of-stream into a new Buffer.
//
// A read that returns zero bytes ends the loop like EOF does. Any other read
// error also ends it; the data read so far is returned together with that
// error. When limit is positive and the captured data would exceed it, the
// partial data is discarded and an ErrAllocation error is returned with a
// nil buffer.
func Drain(r io.Reader, limit int64) (*Buffer, error) {
	buf := NewBuffer(ChunkSize)
	chunk := make([]byte, ChunkSize)

	for {
		n, err := r.Read(chunk)
		if n > 0 {
			if limit > 0 && int64(buf.Len()+n) > limit {
				return nil, newError(ErrAllocation, "grow", ChannelNone,
					fmt.Errorf("capture exceeds %d bytes", limit))
			}
			buf.Write(chunk[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return buf, nil
			}
			return buf, err
		}
		if n == 0 {
			return buf, nil
		}
	}
}
