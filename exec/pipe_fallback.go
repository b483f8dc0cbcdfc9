//go:build unix && !(dragonfly || freebsd || linux || netbsd || openbsd)

package exec

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// pipeCloexec emulates pipe2(O_CLOEXEC) on systems without it. Holding
// ForkLock keeps a concurrent fork from inheriting the descriptors before
// the flag is set.
func pipeCloexec(fds *[2]int) error {
	syscall.ForkLock.RLock()
	defer syscall.ForkLock.RUnlock()

	if err := unix.Pipe(fds[:]); err != nil {
		return err
	}
	unix.CloseOnExec(fds[0])
	unix.CloseOnExec(fds[1])
	return nil
}
