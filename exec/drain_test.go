package exec

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pattern returns n bytes of a repeating alphabet
func pattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('a' + i%26)
	}
	return b
}

func TestBuffer(t *testing.T) {
	b := NewBuffer(ChunkSize)
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, ChunkSize, b.Cap())
	assert.Empty(t, b.Bytes())
	assert.Equal(t, []byte{0}, b.Terminated())

	b.Write([]byte("hello"))
	assert.Equal(t, 5, b.Len())
	assert.Equal(t, "hello", b.String())
	assert.Equal(t, []byte("hello\x00"), b.Terminated())

	// appending through the returned slice must not clobber the buffer
	out := b.Bytes()
	_ = append(out, 'X')
	assert.Equal(t, []byte("hello\x00"), b.Terminated())

	var nilBuf *Buffer
	assert.Equal(t, 0, nilBuf.Len())
	assert.Nil(t, nilBuf.Bytes())
	assert.Equal(t, "<nil>", nilBuf.String())
}

func TestBuffer_Grows(t *testing.T) {
	b := NewBuffer(4)
	want := bytes.Repeat([]byte("0123456789"), 1000)
	for i := 0; i < len(want); i += 7 {
		end := min(i+7, len(want))
		b.Write(want[i:end])
	}
	assert.Equal(t, want, b.Bytes())
	assert.Equal(t, byte(0), b.Terminated()[b.Len()])
}

func TestBuffer_ZeroValue(t *testing.T) {
	var b Buffer
	b.Write([]byte("abc"))
	assert.Equal(t, "abc", b.String())
	assert.Equal(t, []byte("abc\x00"), b.Terminated())
}

func TestDrain(t *testing.T) {
	t.Run("reads to end of stream", func(t *testing.T) {
		data := pattern(ChunkSize*3 + 1)
		buf, err := Drain(bytes.NewReader(data), 0)
		require.NoError(t, err)
		assert.Equal(t, data, buf.Bytes())
	})

	t.Run("empty stream gives empty buffer", func(t *testing.T) {
		buf, err := Drain(bytes.NewReader(nil), 0)
		require.NoError(t, err)
		require.NotNil(t, buf)
		assert.Equal(t, 0, buf.Len())
	})

	t.Run("short reads", func(t *testing.T) {
		data := pattern(5000)
		buf, err := Drain(iotest.OneByteReader(bytes.NewReader(data)), 0)
		require.NoError(t, err)
		assert.Equal(t, data, buf.Bytes())
	})

	t.Run("read error keeps partial data", func(t *testing.T) {
		boom := errors.New("boom")
		r := io.MultiReader(bytes.NewReader([]byte("partial")), iotest.ErrReader(boom))
		buf, err := Drain(r, 0)
		assert.ErrorIs(t, err, boom)
		require.NotNil(t, buf)
		assert.Equal(t, "partial", buf.String())
	})

	t.Run("limit exceeded discards data", func(t *testing.T) {
		buf, err := Drain(bytes.NewReader(pattern(ChunkSize*4)), ChunkSize*2)
		assert.Nil(t, buf)
		assert.ErrorIs(t, err, ErrAllocation)
	})

	t.Run("limit reached exactly", func(t *testing.T) {
		data := pattern(ChunkSize * 2)
		buf, err := Drain(bytes.NewReader(data), int64(len(data)))
		require.NoError(t, err)
		assert.Equal(t, data, buf.Bytes())
	})
}

func TestError(t *testing.T) {
	cause := errors.New("no such file")
	err := newError(ErrProcessCreation, "start", ChannelNone, cause)
	assert.Equal(t, "process creation failed (start): no such file", err.Error())
	assert.ErrorIs(t, err, ErrProcessCreation)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrWrite)

	err = newError(ErrWrite, "write", ChannelStdin, nil)
	assert.Equal(t, "stdin: stdin write failed (write)", err.Error())
	assert.ErrorIs(t, err, ErrWrite)
}

func TestChannelString(t *testing.T) {
	assert.Equal(t, "stdin", ChannelStdin.String())
	assert.Equal(t, "stdout", ChannelStdout.String())
	assert.Equal(t, "stderr", ChannelStderr.String())
	assert.Equal(t, "none", ChannelNone.String())
}
