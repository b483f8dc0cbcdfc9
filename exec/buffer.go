package exec

// Buffer is an owned, growable byte buffer holding captured output.
//
// The backing array always carries one extra zero byte after the last
// counted byte so the contents can be handed to consumers that expect a
// terminated string. That byte is never part of Len or Bytes.
type Buffer struct {
	buf []byte // len(buf) == Len()+1, buf[Len()] == 0
}

// NewBuffer returns an empty buffer with room for size bytes before growing.
func NewBuffer(size int) *Buffer {
	if size < 0 {
		size = 0
	}
	b := make([]byte, 1, size+1)
	return &Buffer{buf: b}
}

// Len returns the number of captured bytes.
func (b *Buffer) Len() int {
	if b == nil || len(b.buf) == 0 {
		return 0
	}
	return len(b.buf) - 1
}

// Cap returns how many bytes fit before the next growth.
func (b *Buffer) Cap() int {
	if b == nil || cap(b.buf) == 0 {
		return 0
	}
	return cap(b.buf) - 1
}

// Bytes returns the captured bytes. The slice aliases the buffer.
func (b *Buffer) Bytes() []byte {
	if b == nil || len(b.buf) == 0 {
		return nil
	}
	return b.buf[:len(b.buf)-1 : len(b.buf)-1]
}

// String returns the captured bytes as a string.
func (b *Buffer) String() string {
	if b == nil {
		return "<nil>"
	}
	return string(b.Bytes())
}

// Terminated returns the captured bytes followed by the zero terminator.
func (b *Buffer) Terminated() []byte {
	if b == nil || len(b.buf) == 0 {
		return []byte{0}
	}
	return b.buf
}

// Write appends p, growing the backing array with amortised doubling.
// It never fails. Running out of memory is fatal to the runtime, so callers
// bound growth up front; Drain does this with its limit.
func (b *Buffer) Write(p []byte) (int, error) {
	if len(b.buf) == 0 {
		b.buf = make([]byte, 1, len(p)+1)
	}
	n := b.Len()
	b.buf = append(b.buf[:n], p...)
	b.buf = append(b.buf, 0)
	return len(p), nil
}
