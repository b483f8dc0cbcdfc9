//go:build unix

package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/pipexec"
	"github.com/simonhull/pipexec/output"
)

func newRoot() *cobra.Command {
	root := RootCmd()
	root.AddCommand(RunCmd(), PresetCmd(), WhereCmd())
	return root
}

// runCLI executes the CLI with args and returns what it wrote to stdout and
// to stderr, including styled output messages.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	prev := output.SetOutput(&stderr)
	t.Cleanup(func() { output.SetOutput(prev) })

	root := newRoot()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(""))

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersion(t *testing.T) {
	stdout, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "pipexec v"+pipexec.Version+"\n", stdout)
}

func TestRun_Echo(t *testing.T) {
	t.Chdir(t.TempDir())

	stdout, _, err := runCLI(t, "run", "--", "echo hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", stdout)
}

func TestRun_JoinsArguments(t *testing.T) {
	t.Chdir(t.TempDir())

	stdout, _, err := runCLI(t, "run", "--", "echo", "a b", "c")
	require.NoError(t, err)
	assert.Equal(t, "a b c\n", stdout)
}

func TestRun_StdinFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	in := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(in, []byte("b\na\n"), 0o644))

	stdout, _, err := runCLI(t, "run", "--stdin", in, "--", "sort")
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", stdout)
}

func TestRun_StdinPassesBytesThrough(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	in := filepath.Join(dir, "blob.bin")
	raw := []byte{0xFE, 0xFF, 0x00, 0x41, 0x42}
	require.NoError(t, os.WriteFile(in, raw, 0o644))

	stdout, _, err := runCLI(t, "run", "--stdin", in, "--", "cat")
	require.NoError(t, err)
	assert.Equal(t, string(raw), stdout)
}

func TestRun_Prefix(t *testing.T) {
	t.Chdir(t.TempDir())

	stdout, _, err := runCLI(t, "run", "--prefix", "--", "printf 'one\\ntwo\\n'")
	require.NoError(t, err)
	assert.Equal(t, "stdout | one\nstdout | two\n", stdout)
}

func TestRun_YAML(t *testing.T) {
	t.Chdir(t.TempDir())

	stdout, _, err := runCLI(t, "run", "--wait", "--format", "yaml", "--", "echo hi")
	require.NoError(t, err)
	assert.Contains(t, stdout, "command: echo hi\n")
	assert.Contains(t, stdout, "exit_code: 0\n")
	assert.Contains(t, stdout, "stdout: |\n  hi\n")
	assert.NotContains(t, stdout, "stderr:")
}

func TestRun_ExitStatus(t *testing.T) {
	t.Chdir(t.TempDir())

	_, _, err := runCLI(t, "run", "--wait", "--", "sh -c 'exit 3'")
	require.Error(t, err)
	assert.Equal(t, 3, ExitCode(err))
}

func TestRun_Errors(t *testing.T) {
	t.Chdir(t.TempDir())

	_, _, err := runCLI(t, "run", "--format", "xml", "--", "true")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")

	_, _, err = runCLI(t, "run", "--", "definitely-not-a-real-command-pipexec")
	require.Error(t, err)
	assert.Equal(t, 1, ExitCode(err))

	_, _, err = runCLI(t, "run")
	assert.Error(t, err)
}

const presetConfig = `presets:
  - name: greet
    description: Say hello
    command: echo hello
  - name: shout
    command: tr a-z A-Z
    input: quiet
`

func TestPreset_List(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pipexec.yml"), []byte(presetConfig), 0o644))

	stdout, stderr, err := runCLI(t, "preset", "list")
	require.NoError(t, err)
	assert.Equal(t, "greet\techo hello\nshout\ttr a-z A-Z\n", stdout)
	assert.Contains(t, stderr, "Say hello")
}

func TestPreset_ListEmpty(t *testing.T) {
	t.Chdir(t.TempDir())

	stdout, stderr, err := runCLI(t, "preset", "list")
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "No presets configured")
}

func TestPreset_Run(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte(presetConfig), 0o644))

	stdout, _, err := runCLI(t, "--config", path, "preset", "run", "shout")
	require.NoError(t, err)
	assert.Equal(t, "QUIET", stdout)

	_, _, err = runCLI(t, "--config", path, "preset", "run", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestWhere(t *testing.T) {
	t.Setenv("PIPEXEC_ALT_SRC_DIR", "true")

	stdout, _, err := runCLI(t, "where")
	require.NoError(t, err)

	exe, err := os.Executable()
	require.NoError(t, err)
	exe, err = filepath.EvalSymlinks(exe)
	require.NoError(t, err)
	assert.Equal(t, filepath.Dir(exe)+"\n", stdout)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 7, ExitCode(&ExitError{Code: 7}))
	assert.Equal(t, 1, ExitCode(assert.AnError))
	assert.Equal(t, "command exited with status 7", (&ExitError{Code: 7}).Error())
}

func TestCommandLine(t *testing.T) {
	assert.Equal(t, "echo $HOME", commandLine([]string{"echo $HOME"}))
	assert.Equal(t, "echo 'a b'", commandLine([]string{"echo", "a b"}))
}

func TestReadInput(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader("from stdin"))

	data, err := readInput(cmd, "", false)
	require.NoError(t, err)
	assert.Nil(t, data)

	data, err = readInput(cmd, "-", false)
	require.NoError(t, err)
	assert.Equal(t, []byte("from stdin"), data)

	path := filepath.Join(t.TempDir(), "wide.txt")
	wide := []byte{0xFF, 0xFE, 'h', 0, 'i', 0}
	require.NoError(t, os.WriteFile(path, wide, 0o644))
	data, err = readInput(cmd, path, false)
	require.NoError(t, err)
	assert.Equal(t, wide, data)

	data, err = readInput(cmd, path, true)
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), data)

	binary := filepath.Join(t.TempDir(), "blob.bin")
	raw := []byte{0xFF, 0xFE, 0x01, 0x02, 0x03}
	require.NoError(t, os.WriteFile(binary, raw, 0o644))
	data, err = readInput(cmd, binary, false)
	require.NoError(t, err)
	assert.Equal(t, raw, data)

	_, err = readInput(cmd, binary, true)
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	data, err = readInput(cmd, empty, false)
	require.NoError(t, err)
	assert.NotNil(t, data)
	assert.Empty(t, data)

	_, err = readInput(cmd, filepath.Join(t.TempDir(), "missing"), false)
	assert.Error(t, err)
}

func TestTrimLabel(t *testing.T) {
	assert.Equal(t, "echo hi", trimLabel("echo   hi\n"))

	long := strings.Repeat("é", 80)
	got := []rune(trimLabel(long))
	assert.Len(t, got, 60)
	assert.Equal(t, '…', got[59])
}
