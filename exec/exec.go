//go:build unix

package exec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/simonhull/pipexec/logger"
)

// DefaultMaxCapture bounds each captured stream unless Options says
// otherwise.
const DefaultMaxCapture = 64 << 20

// Capture selects which output streams Execute captures.
type Capture struct {
	Stdout bool
	Stderr bool
}

// Result is the outcome of a successful Execute.
//
// A nil Stdout or Stderr means the stream was not requested. A non-nil
// buffer of length zero means the child produced no output on it.
type Result struct {
	Pid       int
	Stdout    *Buffer
	Stderr    *Buffer
	Truncated bool // the command line was cut to MaxCommandLine

	// Set only when Options.Wait is true.
	Exited   bool
	ExitCode int
}

// Options configures an Executor
type Options struct {
	Env        []string      // Additional environment variables (KEY=value)
	Dir        string        // Working directory; empty keeps the current one
	Wait       bool          // Wait for the child and report its exit code
	MaxCapture int64         // Per-stream capture limit in bytes; <0 disables
	Logger     logger.Logger // Diagnostics; defaults to logger.Default()

	// LookupEnv resolves references in the command line. Defaults to
	// os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Executor runs command lines with their standard streams connected to
// pipes. It holds configuration only and is safe for concurrent use.
type Executor struct {
	env        []string
	dir        string
	wait       bool
	maxCapture int64
	log        logger.Logger
	lookupEnv  func(string) (string, bool)

	// For substituting the launcher in tests
	launch LaunchFunc
}

// NewExecutor creates an executor. A nil opts uses defaults.
func NewExecutor(opts *Options) *Executor {
	if opts == nil {
		opts = &Options{}
	}

	e := &Executor{
		env:        opts.Env,
		dir:        opts.Dir,
		wait:       opts.Wait,
		maxCapture: opts.MaxCapture,
		log:        opts.Logger,
		lookupEnv:  opts.LookupEnv,
		launch:     Launch,
	}
	if e.maxCapture == 0 {
		e.maxCapture = DefaultMaxCapture
	}
	if e.log == nil {
		e.log = logger.Default()
	}
	if e.lookupEnv == nil {
		e.lookupEnv = os.LookupEnv
	}
	return e
}

// Execute runs commandLine, writes input to its stdin when input is non-nil
// and captures the streams selected by capture.
//
// The call blocks until every captured stream reaches end-of-stream, which
// normally happens when the child exits. Input is written while the outputs
// are drained, so neither large input nor large output can deadlock the
// parent against the child. Cancelling ctx kills the child.
//
// Every descriptor opened by Execute is closed before it returns, on success
// and on failure alike.
func (e *Executor) Execute(ctx context.Context, commandLine string, input []byte, capture Capture) (*Result, error) {
	log := e.log.WithFields(logger.F("command", commandLine))

	line, truncated := BuildCommandLine(commandLine, e.lookupEnv)
	if truncated {
		log.Warn("command line truncated", logger.F("limit", MaxCommandLine))
	}

	argv, err := SplitCommandLine(line)
	if err != nil {
		return nil, e.fail(log, err)
	}

	pipes, err := NewPipeSet(input != nil, capture.Stdout, capture.Stderr)
	if err != nil {
		return nil, e.fail(log, err)
	}
	defer pipes.Close()

	child, err := e.launch(argv, pipes.ChildFiles(), e.env, e.dir)
	if err != nil {
		return nil, e.fail(log, err)
	}
	log = log.WithFields(logger.F("pid", child.Pid))
	log.Debug("child launched", logger.F("argv", argv))

	if err := pipes.CloseChildEnds(); err != nil {
		_ = child.Kill()
		child.Detach(log)
		return nil, e.fail(log, err)
	}

	// abort unblocks every goroutine below: the child stops writing and
	// pending reads and writes on the parent ends return os.ErrClosed.
	abort := sync.OnceFunc(func() {
		_ = child.Kill()
		_ = pipes.CloseParentEnds()
	})
	stop := context.AfterFunc(ctx, abort)
	defer stop()

	res := &Result{Pid: child.Pid, Truncated: truncated}

	var g errgroup.Group
	if pipes.Stdin != nil {
		g.Go(func() error { return e.feed(log, pipes.Stdin, input) })
	}
	if pipes.Stdout != nil {
		g.Go(func() (err error) {
			if res.Stdout, err = e.drain(log, pipes.Stdout); err != nil {
				abort()
			}
			return err
		})
	}
	if pipes.Stderr != nil {
		g.Go(func() (err error) {
			if res.Stderr, err = e.drain(log, pipes.Stderr); err != nil {
				abort()
			}
			return err
		})
	}
	err = g.Wait()

	// A cancellation that arrives after the streams are drained did not
	// touch the child; only one that ran abort counts.
	if !stop() {
		child.Detach(log)
		log.Warn("execution cancelled", logger.F("reason", ctx.Err()))
		return nil, fmt.Errorf("%s cancelled: %w", argv[0], ctx.Err())
	}
	if err != nil {
		abort()
		child.Detach(log)
		return nil, e.fail(log, err)
	}

	if !e.wait {
		child.Detach(log)
		return res, nil
	}

	state, err := child.Wait()
	if err != nil {
		log.Warn("waiting for child failed", logger.F("error", err))
		return res, nil
	}
	res.Exited = true
	res.ExitCode = state.ExitCode()
	log.Debug("child exited", logger.F("exit_code", res.ExitCode))
	return res, nil
}

// feed writes input to the child's stdin and closes it so the child sees
// end-of-stream. A child that exits without reading its input is not an
// error.
func (e *Executor) feed(log logger.Logger, p *Pipe, input []byte) error {
	_, err := p.Parent().Write(input)
	closeErr := p.CloseParent()

	switch {
	case errors.Is(err, syscall.EPIPE):
		log.Debug("child closed stdin before reading all input", logger.F("bytes", len(input)))
		return nil
	case errors.Is(err, os.ErrClosed):
		// cancelled; Execute reports the context error
		return nil
	case err != nil:
		return newError(ErrWrite, "write", ChannelStdin, err)
	case closeErr != nil:
		return newError(ErrWrite, "close", ChannelStdin, closeErr)
	}
	return nil
}

func (e *Executor) drain(log logger.Logger, p *Pipe) (*Buffer, error) {
	buf, err := Drain(p.Parent(), e.maxCapture)
	switch {
	case errors.Is(err, ErrAllocation):
		var xerr *Error
		if errors.As(err, &xerr) {
			xerr.Channel = p.Channel
		}
		return nil, err
	case err != nil && !errors.Is(err, os.ErrClosed):
		log.Warn("read ended early", logger.F("channel", p.Channel), logger.F("error", err),
			logger.F("bytes", buf.Len()))
	}
	log.Debug("drained", logger.F("channel", p.Channel), logger.F("bytes", buf.Len()))
	return buf, nil
}

func (e *Executor) fail(log logger.Logger, err error) error {
	fields := []logger.Field{logger.F("error", err)}
	var xerr *Error
	if errors.As(err, &xerr) {
		fields = append(fields, logger.F("kind", xerr.Kind), logger.F("op", xerr.Op))
		if xerr.Channel != ChannelNone {
			fields = append(fields, logger.F("channel", xerr.Channel))
		}
	}
	log.Error("execution failed", fields...)
	return err
}

// Run executes commandLine with a default executor and reports success as a
// boolean. Failures are logged, not returned. Captured streams that were not
// requested, or whose capture failed, are nil.
func Run(commandLine string, input []byte, captureStdout, captureStderr bool) (ok bool, stdout, stderr []byte) {
	res, err := NewExecutor(nil).Execute(context.Background(), commandLine, input,
		Capture{Stdout: captureStdout, Stderr: captureStderr})
	if err != nil {
		return false, nil, nil
	}
	if res.Stdout != nil {
		stdout = res.Stdout.Bytes()
	}
	if res.Stderr != nil {
		stderr = res.Stderr.Bytes()
	}
	return true, stdout, stderr
}
