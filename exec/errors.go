package exec

import (
	"errors"
	"fmt"
)

// Failure classes reported by Execute. Match them with errors.Is.
var (
	ErrPipeCreation        = errors.New("pipe creation failed")
	ErrHandleConfiguration = errors.New("handle configuration failed")
	ErrProcessCreation     = errors.New("process creation failed")
	ErrWrite               = errors.New("stdin write failed")
	ErrAllocation          = errors.New("capture buffer allocation failed")
)

// Error describes a failed step of Execute.
type Error struct {
	Kind    error   // one of the Err* sentinels
	Op      string  // step that failed, e.g. "pipe2" or "start"
	Channel Channel // affected channel, if any
	Err     error   // underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Channel != ChannelNone {
		msg = fmt.Sprintf("%s: %s", e.Channel, msg)
	}
	if e.Op != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Op)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the failure class and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, op string, ch Channel, err error) *Error {
	return &Error{Kind: kind, Op: op, Channel: ch, Err: err}
}
