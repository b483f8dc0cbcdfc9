// Package output provides styled terminal messages for the pipexec CLI.
//
// Functions use lipgloss for styling but abstract away the details from
// callers. Messages go to stderr so that captured command output written to
// stdout stays clean for pipelines.
package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("green")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("red")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("yellow"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	mu          sync.Mutex
	out         io.Writer = os.Stderr
	verboseMode bool
)

// SetVerbose enables or disables verbose output for debugging.
// This should be called by the CLI when the --verbose flag is set.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verboseMode = v
}

// SetOutput redirects all messages and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := out
	out = w
	return prev
}

func emit(style lipgloss.Style, msg string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintln(out, style.Render(msg))
}

// Success prints a success message in green.
//
// Example:
//
//	output.Success("echo exited with status 0")
func Success(msg string) {
	emit(successStyle, "✔ "+msg)
}

// Error prints an error message with ❌ emoji and red color.
func Error(msg string) {
	emit(errorStyle, "❌ "+msg)
}

// Warn prints a warning in yellow.
func Warn(msg string) {
	emit(warnStyle, "⚠️  "+msg)
}

// Info prints an informational message in cyan.
func Info(msg string) {
	emit(infoStyle, "ℹ️  "+msg)
}

// Step prints an indented step message in gray.
// Use this for sub-items such as preset descriptions.
func Step(msg string) {
	emit(stepStyle, "   "+msg)
}

// Verbose prints a debug message only if verbose mode is enabled.
//
// Example:
//
//	output.Verbose("Loaded presets from pipexec.yml")
func Verbose(msg string) {
	mu.Lock()
	v := verboseMode
	mu.Unlock()
	if v {
		emit(stepStyle, "🔍 "+msg)
	}
}
