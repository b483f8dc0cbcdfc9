package exec

import (
	"bytes"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// PrefixWriter adds a prefix to each line of output. An incomplete last line
// is held back until it is completed or Flush is called.
type PrefixWriter struct {
	prefix  []byte
	writer  io.Writer
	pending []byte
}

// NewPrefixWriter creates a writer that prefixes each line
func NewPrefixWriter(writer io.Writer, prefix string) *PrefixWriter {
	return &PrefixWriter{
		prefix: []byte(prefix),
		writer: writer,
	}
}

// Write adds prefix to each complete line
func (p *PrefixWriter) Write(data []byte) (int, error) {
	p.pending = append(p.pending, data...)

	for {
		i := bytes.IndexByte(p.pending, '\n')
		if i < 0 {
			break
		}
		if err := p.emit(p.pending[:i]); err != nil {
			return 0, err
		}
		p.pending = p.pending[i+1:]
	}

	return len(data), nil
}

// Flush writes a held-back partial line, terminating it with a newline.
func (p *PrefixWriter) Flush() error {
	if len(p.pending) == 0 {
		return nil
	}
	err := p.emit(p.pending)
	p.pending = nil
	return err
}

func (p *PrefixWriter) emit(line []byte) error {
	out := make([]byte, 0, len(p.prefix)+len(line)+1)
	out = append(out, p.prefix...)
	out = append(out, line...)
	out = append(out, '\n')
	_, err := p.writer.Write(out)
	return err
}

// StreamingWriter is a PrefixWriter that also styles every line, for
// rendering captured output on a terminal.
type StreamingWriter struct {
	style lipgloss.Style
	lines *PrefixWriter
}

// NewStreamingWriter creates a formatted output writer
func NewStreamingWriter(writer io.Writer, prefix string, color lipgloss.Color) *StreamingWriter {
	s := &StreamingWriter{
		style: lipgloss.NewStyle().Foreground(color),
	}
	s.lines = NewPrefixWriter(writerFunc(func(line []byte) (int, error) {
		styled := s.style.Render(string(bytes.TrimSuffix(line, []byte("\n"))))
		return io.WriteString(writer, styled+"\n")
	}), prefix)
	return s
}

// Write formats and writes output line by line
func (s *StreamingWriter) Write(p []byte) (int, error) {
	return s.lines.Write(p)
}

// Flush writes any remaining buffered content
func (s *StreamingWriter) Flush() error {
	return s.lines.Flush()
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
