package exec

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/kballard/go-shellquote"
)

// MaxCommandLine bounds the expanded command line in bytes. Longer lines are
// truncated, not rejected.
const MaxCommandLine = 32767

// BuildCommandLine expands environment references in raw and bounds the
// result to MaxCommandLine bytes. It reports whether the line was truncated.
//
// Supported forms are ${NAME}, $NAME and %NAME%, where NAME is a letter or
// underscore followed by letters, digits and underscores. An unknown $ reference
// expands to nothing, as in a shell; an unknown %NAME% is kept verbatim.
// A nil lookup disables expansion.
func BuildCommandLine(raw string, lookup func(string) (string, bool)) (string, bool) {
	line := raw
	if lookup != nil {
		line = expand(raw, lookup)
	}
	if len(line) <= MaxCommandLine {
		return line, false
	}
	cut := MaxCommandLine
	for cut > 0 && !utf8.RuneStart(line[cut]) {
		cut--
	}
	return line[:cut], true
}

// SplitCommandLine splits a command line into argv using shell quoting
// rules.
func SplitCommandLine(line string) ([]string, error) {
	argv, err := shellquote.Split(line)
	if err != nil {
		return nil, newError(ErrProcessCreation, "parse", ChannelNone, err)
	}
	if len(argv) == 0 {
		return nil, newError(ErrProcessCreation, "parse", ChannelNone, errors.New("empty command line"))
	}
	return argv, nil
}

func expand(s string, lookup func(string) (string, bool)) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		switch s[i] {
		case '%':
			end := strings.IndexByte(s[i+1:], '%')
			if end <= 0 || !validName(s[i+1:i+1+end]) {
				b.WriteByte('%')
				i++
				continue
			}
			name := s[i+1 : i+1+end]
			if v, ok := lookup(name); ok {
				b.WriteString(v)
			} else {
				b.WriteString(s[i : i+end+2])
			}
			i += end + 2

		case '$':
			name, width := shellName(s[i+1:])
			if name == "" {
				b.WriteByte('$')
				i++
				continue
			}
			v, _ := lookup(name)
			b.WriteString(v)
			i += 1 + width

		default:
			b.WriteByte(s[i])
			i++
		}
	}
	return b.String()
}

// shellName parses the name after a '$'. width is the number of bytes
// consumed, including braces.
func shellName(s string) (name string, width int) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 2 || !validName(s[1:end]) {
			return "", 0
		}
		return s[1:end], end + 1
	}
	n := 0
	for n < len(s) && isNameByte(s[n], n == 0) {
		n++
	}
	return s[:n], n
}

func validName(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isNameByte(s[i], i == 0) {
			return false
		}
	}
	return s != ""
}

func isNameByte(c byte, first bool) bool {
	switch {
	case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		return true
	case '0' <= c && c <= '9':
		return !first
	}
	return false
}
