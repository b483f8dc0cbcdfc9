// Package installdir locates the directory a pipexec installation lives in,
// starting from the running executable.
package installdir

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cast"
)

// AltSrcDirEnv, when truthy, means the executable sits directly in the
// installation directory instead of in its bin/ subdirectory.
const AltSrcDirEnv = "PIPEXEC_ALT_SRC_DIR"

// Discover returns the installation directory of the running executable.
func Discover() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}
	return FromExecutable(exe, os.Getenv(AltSrcDirEnv))
}

// FromExecutable derives the installation directory from an executable
// path. Symlinks are resolved first so a link in $PATH still points at the
// real installation. altSrcDir is the raw value of AltSrcDirEnv.
func FromExecutable(exe, altSrcDir string) (string, error) {
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", exe, err)
	}
	resolved, err = filepath.Abs(resolved)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", exe, err)
	}

	dir := filepath.Dir(resolved)
	if !cast.ToBool(altSrcDir) {
		dir = filepath.Dir(dir)
	}
	return dir, nil
}
