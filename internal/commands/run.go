package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/simonhull/pipexec/exec"
	"github.com/simonhull/pipexec/output"
	"github.com/simonhull/pipexec/wideargv"
)

// renderOptions controls how a result is written out
type renderOptions struct {
	format  string
	prefix  bool
	spinner bool
}

func (r *renderOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.format, "format", "text", "Output format: text or yaml")
	cmd.Flags().BoolVar(&r.prefix, "prefix", false, "Prefix captured lines with the stream name")
	cmd.Flags().BoolVar(&r.spinner, "spinner", false, "Show a spinner on a terminal while the command runs")
}

func (r *renderOptions) validate() error {
	switch r.format {
	case "text", "yaml":
		return nil
	}
	return fmt.Errorf("unknown format %q (want text or yaml)", r.format)
}

// RunCmd creates the run command
func RunCmd() *cobra.Command {
	var (
		stdinPath     string
		stdinUTF16    bool
		captureStdout bool
		captureStderr bool
		wait          bool
		maxCapture    int64
		render        renderOptions
	)

	cmd := &cobra.Command{
		Use:   "run [flags] -- COMMAND [ARGS...]",
		Short: "Run a command and capture its output",
		Long: `Run a command with its standard streams connected to pipes.

A single argument is used as a complete command line; several arguments are
quoted and joined. Environment references ($NAME, ${NAME}, %NAME%) are
expanded before the line is split.`,
		Example: `  pipexec run -- echo hello
  pipexec run --stdin data.txt --stderr -- 'sort -r'
  pipexec run --wait --format yaml -- ls /nonexistent`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := render.validate(); err != nil {
				return err
			}

			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}

			opts := cfg.ExecutorOptions(log)
			if cmd.Flags().Changed("wait") {
				opts.Wait = wait
			}
			if cmd.Flags().Changed("max-capture") {
				opts.MaxCapture = maxCapture
			}

			input, err := readInput(cmd, stdinPath, stdinUTF16)
			if err != nil {
				return err
			}

			line := commandLine(args)
			capture := exec.Capture{Stdout: captureStdout, Stderr: captureStderr}
			output.Verbose("Running: " + line)

			return execute(cmd, exec.NewExecutor(opts), line, func(ctx context.Context, e *exec.Executor) (*exec.Result, error) {
				return e.Execute(ctx, line, input, capture)
			}, render)
		},
	}

	cmd.Flags().StringVar(&stdinPath, "stdin", "", "File to feed to the command's stdin (- for this process's stdin)")
	cmd.Flags().BoolVar(&stdinUTF16, "stdin-utf16", false, "Decode the stdin file from UTF-16 before feeding it")
	cmd.Flags().BoolVar(&captureStdout, "stdout", true, "Capture the command's stdout")
	cmd.Flags().BoolVar(&captureStderr, "stderr", false, "Capture the command's stderr")
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for the command and exit with its status")
	cmd.Flags().Int64Var(&maxCapture, "max-capture", exec.DefaultMaxCapture, "Per-stream capture limit in bytes (negative for none)")
	render.addFlags(cmd)

	return cmd
}

func commandLine(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return shellquote.Join(args...)
}

// readInput loads the data for the child's stdin. No path means no stdin
// pipe at all. The bytes are passed through unchanged unless utf16 asks for
// decoding.
func readInput(cmd *cobra.Command, path string, utf16 bool) ([]byte, error) {
	if path == "" {
		return nil, nil
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	if data == nil {
		data = []byte{}
	}

	if !utf16 {
		if wideargv.LooksWide(data) {
			output.Verbose("Input starts with a UTF-16 byte order mark; pass --stdin-utf16 to decode it")
		}
		return data, nil
	}

	data, err = wideargv.DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	output.Verbose("Decoded UTF-16 input")
	return data, nil
}

type runFunc func(ctx context.Context, e *exec.Executor) (*exec.Result, error)

func execute(cmd *cobra.Command, e *exec.Executor, label string, run runFunc, render renderOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		res *exec.Result
		err error
	)
	if render.spinner && isTerminal(cmd.ErrOrStderr()) {
		err = runWithSpinner(cmd.ErrOrStderr(), trimLabel(label), func() (runErr error) {
			res, runErr = run(ctx, e)
			return runErr
		})
	} else {
		res, err = run(ctx, e)
	}
	if err != nil {
		return err
	}

	if render.format == "yaml" {
		err = writeYAML(cmd.OutOrStdout(), label, res)
	} else {
		err = writeText(cmd.OutOrStdout(), cmd.ErrOrStderr(), res, render.prefix)
	}
	if err != nil {
		return err
	}

	if res.Exited && res.ExitCode != 0 {
		return &ExitError{Code: res.ExitCode}
	}
	if res.Exited {
		output.Verbose(fmt.Sprintf("pid %d exited with status 0", res.Pid))
	}
	return nil
}

// writeText copies captured stdout to stdout and captured stderr to stderr.
// On a terminal, or when asked to, each line is prefixed with its stream.
func writeText(stdout, stderr io.Writer, res *exec.Result, prefix bool) error {
	streams := []struct {
		name  string
		buf   *exec.Buffer
		dst   io.Writer
		color lipgloss.Color
	}{
		{"stdout", res.Stdout, stdout, lipgloss.Color("252")},
		{"stderr", res.Stderr, stderr, lipgloss.Color("209")},
	}

	for _, s := range streams {
		if s.buf == nil {
			continue
		}

		var w interface {
			io.Writer
			Flush() error
		}
		switch {
		case isTerminal(s.dst):
			w = exec.NewStreamingWriter(s.dst, s.name+" │ ", s.color)
		case prefix:
			w = exec.NewPrefixWriter(s.dst, s.name+" | ")
		default:
			if _, err := s.dst.Write(s.buf.Bytes()); err != nil {
				return err
			}
			continue
		}

		if _, err := w.Write(s.buf.Bytes()); err != nil {
			return err
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}

type yamlReport struct {
	Command   string  `yaml:"command"`
	Pid       int     `yaml:"pid"`
	Truncated bool    `yaml:"truncated,omitempty"`
	ExitCode  *int    `yaml:"exit_code,omitempty"`
	Stdout    *string `yaml:"stdout,omitempty"`
	Stderr    *string `yaml:"stderr,omitempty"`
}

func writeYAML(w io.Writer, label string, res *exec.Result) error {
	report := yamlReport{
		Command:   label,
		Pid:       res.Pid,
		Truncated: res.Truncated,
	}
	if res.Exited {
		code := res.ExitCode
		report.ExitCode = &code
	}
	if res.Stdout != nil {
		s := res.Stdout.String()
		report.Stdout = &s
	}
	if res.Stderr != nil {
		s := res.Stderr.String()
		report.Stderr = &s
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("writing yaml: %w", err)
	}
	return enc.Close()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// trimLabel shortens a command line for display in the spinner.
func trimLabel(s string) string {
	const limit = 60
	r := []rune(strings.Join(strings.Fields(s), " "))
	if len(r) <= limit {
		return string(r)
	}
	return string(r[:limit-1]) + "…"
}
