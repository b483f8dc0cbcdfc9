package exec

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(vars map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

func TestBuildCommandLine_Expansion(t *testing.T) {
	lookup := envOf(map[string]string{
		"HOME":  "/home/simon",
		"TOOL":  "rizin",
		"EMPTY": "",
	})

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"no references", "echo hello", "echo hello"},
		{"dollar", "ls $HOME", "ls /home/simon"},
		{"braces", "${TOOL}-agent", "rizin-agent"},
		{"percent", "%TOOL% -v", "rizin -v"},
		{"unknown dollar is empty", "echo [$NOPE]", "echo []"},
		{"unknown percent kept", "echo %NOPE%", "echo %NOPE%"},
		{"set but empty", "echo [%EMPTY%]", "echo []"},
		{"lone percent", "echo 100%", "echo 100%"},
		{"double percent", "echo %%", "echo %%"},
		{"printf verbs", "printf '%s %d' %TOOL%", "printf '%s %d' rizin"},
		{"lone dollar", "echo $ 5", "echo $ 5"},
		{"trailing dollar", "echo $", "echo $"},
		{"digit after dollar", "echo $1", "echo $1"},
		{"unterminated braces", "echo ${TOOL", "echo ${TOOL"},
		{"name ends at punctuation", "$TOOL.conf", "rizin.conf"},
		{"mixed", "%TOOL% $HOME/${TOOL}", "rizin /home/simon/rizin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated := BuildCommandLine(tt.raw, lookup)
			assert.False(t, truncated)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildCommandLine_NilLookup(t *testing.T) {
	got, truncated := BuildCommandLine("echo $HOME %HOME%", nil)
	assert.False(t, truncated)
	assert.Equal(t, "echo $HOME %HOME%", got)
}

func TestBuildCommandLine_Truncates(t *testing.T) {
	long := "echo " + strings.Repeat("x", MaxCommandLine)
	got, truncated := BuildCommandLine(long, nil)
	assert.True(t, truncated)
	assert.Len(t, got, MaxCommandLine)

	// expansion may push a short line over the limit
	lookup := envOf(map[string]string{"BIG": strings.Repeat("y", MaxCommandLine)})
	got, truncated = BuildCommandLine("echo $BIG", lookup)
	assert.True(t, truncated)
	assert.Len(t, got, MaxCommandLine)

	exact := strings.Repeat("z", MaxCommandLine)
	got, truncated = BuildCommandLine(exact, nil)
	assert.False(t, truncated)
	assert.Equal(t, exact, got)
}

func TestBuildCommandLine_TruncatesOnRuneBoundary(t *testing.T) {
	// "é" is two bytes; place one across the limit
	long := strings.Repeat("a", MaxCommandLine-1) + "é"
	got, truncated := BuildCommandLine(long, nil)
	assert.True(t, truncated)
	assert.Len(t, got, MaxCommandLine-1)
	assert.True(t, utf8.ValidString(got))
}

func TestSplitCommandLine(t *testing.T) {
	argv, err := SplitCommandLine(`grep -n "two words" 'single quoted' plain\ escaped`)
	require.NoError(t, err)
	assert.Equal(t, []string{"grep", "-n", "two words", "single quoted", "plain escaped"}, argv)

	_, err = SplitCommandLine("")
	assert.ErrorIs(t, err, ErrProcessCreation)

	_, err = SplitCommandLine(`echo "unterminated`)
	assert.ErrorIs(t, err, ErrProcessCreation)
}
