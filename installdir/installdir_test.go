package installdir

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeInstall(t *testing.T) (root, exe string) {
	t.Helper()

	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	bin := filepath.Join(root, "bin")
	require.NoError(t, os.MkdirAll(bin, 0o755))

	exe = filepath.Join(bin, "pipexec")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755))
	return root, exe
}

func TestFromExecutable(t *testing.T) {
	root, exe := fakeInstall(t)

	dir, err := FromExecutable(exe, "")
	require.NoError(t, err)
	assert.Equal(t, root, dir)

	dir, err = FromExecutable(exe, "true")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "bin"), dir)

	dir, err = FromExecutable(exe, "0")
	require.NoError(t, err)
	assert.Equal(t, root, dir)
}

func TestFromExecutable_FollowsSymlinks(t *testing.T) {
	root, exe := fakeInstall(t)

	linkDir := t.TempDir()
	link := filepath.Join(linkDir, "pipexec")
	require.NoError(t, os.Symlink(exe, link))

	dir, err := FromExecutable(link, "")
	require.NoError(t, err)
	assert.Equal(t, root, dir)
}

func TestFromExecutable_Missing(t *testing.T) {
	_, err := FromExecutable(filepath.Join(t.TempDir(), "nope"), "")
	assert.Error(t, err)
}

func TestDiscover(t *testing.T) {
	t.Setenv(AltSrcDirEnv, "1")

	dir, err := Discover()
	require.NoError(t, err)

	exe, err := os.Executable()
	require.NoError(t, err)
	exe, err = filepath.EvalSymlinks(exe)
	require.NoError(t, err)
	assert.Equal(t, filepath.Dir(exe), dir)
}
