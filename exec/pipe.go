//go:build unix

package exec

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// Pipe is one anonymous pipe. The parent end stays in this process; the
// child end is bound to the child's standard descriptor for Channel.
//
// For stdin the parent holds the write end; for stdout and stderr it holds
// the read end.
type Pipe struct {
	Channel Channel
	parent  *os.File
	child   *os.File
}

// Parent returns the end retained by this process.
func (p *Pipe) Parent() *os.File { return p.parent }

// Child returns the end handed to the child process.
func (p *Pipe) Child() *os.File { return p.child }

// CloseChild closes this process's copy of the child end. After launch the
// child must be the only holder, otherwise the parent never sees EOF.
func (p *Pipe) CloseChild() error { return closeFile(p.child) }

// CloseParent closes the parent end.
func (p *Pipe) CloseParent() error { return closeFile(p.parent) }

// Close closes both ends. Closing an end twice is not an error.
func (p *Pipe) Close() error {
	return errors.Join(p.CloseChild(), p.CloseParent())
}

func closeFile(f *os.File) error {
	if f == nil {
		return nil
	}
	if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return err
	}
	return nil
}

// newPipe creates a pipe for ch. Both descriptors are created close-on-exec
// so no unrelated child started concurrently can inherit them; the child
// end is installed explicitly by Launch.
func newPipe(ch Channel) (*Pipe, error) {
	var fds [2]int
	if err := pipeCloexec(&fds); err != nil {
		return nil, newError(ErrPipeCreation, "pipe", ch, err)
	}
	r, w := fds[0], fds[1]

	parentFD, childFD := r, w
	if ch == ChannelStdin {
		parentFD, childFD = w, r
	}

	if err := configureParentFD(parentFD); err != nil {
		unix.Close(r)
		unix.Close(w)
		return nil, newError(ErrHandleConfiguration, "fcntl", ch, err)
	}

	return &Pipe{
		Channel: ch,
		parent:  os.NewFile(uintptr(parentFD), "|"+ch.String()),
		child:   os.NewFile(uintptr(childFD), ch.String()+"|"),
	}, nil
}

// configureParentFD makes sure the parent end is not inheritable and puts
// it in non-blocking mode so os.File serves it through the runtime poller;
// that lets Close interrupt a pending read.
func configureParentFD(fd int) error {
	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
	if err != nil {
		return err
	}
	if flags&unix.FD_CLOEXEC == 0 {
		if _, err := unix.FcntlInt(uintptr(fd), unix.F_SETFD, flags|unix.FD_CLOEXEC); err != nil {
			return err
		}
	}
	return unix.SetNonblock(fd, true)
}

// PipeSet holds the pipes requested for one execution.
type PipeSet struct {
	Stdin  *Pipe
	Stdout *Pipe
	Stderr *Pipe
}

// NewPipeSet creates only the requested pipes. On failure every pipe
// created so far is closed before the error is returned.
func NewPipeSet(stdin, stdout, stderr bool) (*PipeSet, error) {
	s := &PipeSet{}
	want := []struct {
		on  bool
		ch  Channel
		dst **Pipe
	}{
		{stdin, ChannelStdin, &s.Stdin},
		{stdout, ChannelStdout, &s.Stdout},
		{stderr, ChannelStderr, &s.Stderr},
	}
	for _, w := range want {
		if !w.on {
			continue
		}
		p, err := newPipe(w.ch)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		*w.dst = p
	}
	return s, nil
}

func (s *PipeSet) pipes() []*Pipe {
	out := make([]*Pipe, 0, 3)
	for _, p := range []*Pipe{s.Stdin, s.Stdout, s.Stderr} {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// ChildFiles returns the child ends in descriptor order (0, 1, 2). Entries
// for channels that were not requested are nil.
func (s *PipeSet) ChildFiles() [3]*os.File {
	var files [3]*os.File
	if s.Stdin != nil {
		files[0] = s.Stdin.child
	}
	if s.Stdout != nil {
		files[1] = s.Stdout.child
	}
	if s.Stderr != nil {
		files[2] = s.Stderr.child
	}
	return files
}

// CloseChildEnds closes the parent's copies of every child end.
func (s *PipeSet) CloseChildEnds() error {
	var errs []error
	for _, p := range s.pipes() {
		if err := p.CloseChild(); err != nil {
			errs = append(errs, newError(ErrHandleConfiguration, "close", p.Channel, err))
		}
	}
	return errors.Join(errs...)
}

// CloseParentEnds closes every parent end. Reads blocked on them return
// os.ErrClosed.
func (s *PipeSet) CloseParentEnds() error {
	var errs []error
	for _, p := range s.pipes() {
		errs = append(errs, p.CloseParent())
	}
	return errors.Join(errs...)
}

// Close releases every descriptor in the set. It may be called more than
// once and concurrently with CloseParentEnds.
func (s *PipeSet) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	for _, p := range s.pipes() {
		errs = append(errs, p.Close())
	}
	return errors.Join(errs...)
}
