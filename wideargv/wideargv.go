// Package wideargv converts wide-character (UTF-16) text, such as a native
// argument vector or an input file saved by a Windows tool, into UTF-8.
package wideargv

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decode converts every wide argument to a UTF-8 string. A trailing NUL
// terminator on an argument is dropped. Unpaired surrogates become U+FFFD.
func Decode(argv [][]uint16) ([]string, error) {
	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()

	out := make([]string, len(argv))
	for i, arg := range argv {
		if n := len(arg); n > 0 && arg[n-1] == 0 {
			arg = arg[:n-1]
		}
		raw := make([]byte, 0, 2*len(arg))
		for _, u := range arg {
			raw = binary.LittleEndian.AppendUint16(raw, u)
		}
		s, err := dec.Bytes(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding argument %d: %w", i, err)
		}
		out[i] = string(s)
	}
	return out, nil
}

// DecodeBytes converts UTF-16 bytes to UTF-8. A byte order mark selects the
// endianness and is removed; without one the input is read as little
// endian, the native order on Windows.
func DecodeBytes(b []byte) ([]byte, error) {
	if len(b)%2 != 0 {
		return nil, fmt.Errorf("utf-16 input has odd length %d", len(b))
	}
	dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	out, _, err := transform.Bytes(dec, b)
	if err != nil {
		return nil, fmt.Errorf("decoding utf-16: %w", err)
	}
	return out, nil
}

// LooksWide reports whether b starts with a UTF-16 byte order mark.
func LooksWide(b []byte) bool {
	return bytes.HasPrefix(b, []byte{0xFF, 0xFE}) || bytes.HasPrefix(b, []byte{0xFE, 0xFF})
}
