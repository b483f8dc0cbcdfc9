//go:build dragonfly || freebsd || linux || netbsd || openbsd

package exec

import "golang.org/x/sys/unix"

func pipeCloexec(fds *[2]int) error {
	return unix.Pipe2(fds[:], unix.O_CLOEXEC)
}
