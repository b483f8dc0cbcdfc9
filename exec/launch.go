//go:build unix

package exec

import (
	"errors"
	"os"
	"os/exec"
	"slices"
	"strings"

	"github.com/simonhull/pipexec/logger"
)

// Child is a launched process. Execute keeps it only long enough to kill
// it on cancellation; after that it is detached.
type Child struct {
	Pid     int
	process *os.Process
}

// Kill terminates the child. Killing a child that already exited is not an
// error.
func (c *Child) Kill() error {
	if err := c.process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

// Wait blocks until the child exits.
func (c *Child) Wait() (*os.ProcessState, error) {
	return c.process.Wait()
}

// Detach gives up interest in the child. Its exit status is collected in the
// background so the process table does not fill with zombies; the status is
// only logged.
func (c *Child) Detach(log logger.Logger) {
	go func() {
		state, err := c.process.Wait()
		if err != nil {
			log.Debug("reaping detached child failed", logger.F("pid", c.Pid), logger.F("error", err))
			return
		}
		log.Debug("detached child exited", logger.F("pid", c.Pid), logger.F("status", state.String()))
	}()
}

// LaunchFunc starts argv with files bound as descriptors 0, 1 and 2.
type LaunchFunc func(argv []string, files [3]*os.File, env []string, dir string) (*Child, error)

// Launch starts argv as a new process whose standard descriptors are the
// given files. A nil entry is bound to the null device. env is added to
// this process's environment and wins over variables already set there; an
// empty dir keeps the current directory.
func Launch(argv []string, files [3]*os.File, env []string, dir string) (*Child, error) {
	if len(argv) == 0 {
		return nil, newError(ErrProcessCreation, "start", ChannelNone, errors.New("empty argv"))
	}

	path, err := exec.LookPath(argv[0])
	if err != nil && !errors.Is(err, exec.ErrDot) {
		return nil, newError(ErrProcessCreation, "lookpath", ChannelNone, err)
	}

	var devNull *os.File
	bound := make([]*os.File, len(files))
	for i, f := range files {
		if f == nil {
			if devNull == nil {
				devNull, err = os.OpenFile(os.DevNull, os.O_RDWR, 0)
				if err != nil {
					return nil, newError(ErrProcessCreation, "open "+os.DevNull, ChannelNone, err)
				}
				defer devNull.Close()
			}
			f = devNull
		}
		bound[i] = f
	}

	proc, err := os.StartProcess(path, argv, &os.ProcAttr{
		Dir:   dir,
		Env:   mergeEnv(os.Environ(), env),
		Files: bound,
	})
	if err != nil {
		return nil, newError(ErrProcessCreation, "start", ChannelNone, err)
	}

	return &Child{Pid: proc.Pid, process: proc}, nil
}

// mergeEnv appends extra to base and drops earlier entries for the same
// key, so the last assignment wins. os.StartProcess passes duplicates
// through and getenv in the child would see the first one.
func mergeEnv(base, extra []string) []string {
	all := slices.Concat(base, extra)
	seen := make(map[string]bool, len(all))
	out := make([]string, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		key, _, _ := strings.Cut(all[i], "=")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, all[i])
	}
	slices.Reverse(out)
	return out
}
