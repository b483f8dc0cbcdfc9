package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/pipexec"
	"github.com/simonhull/pipexec/config"
	"github.com/simonhull/pipexec/logger"
	"github.com/simonhull/pipexec/output"
)

// RootCmd creates and returns the root command for the pipexec CLI
func RootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "pipexec",
		Short: "Run commands over pipes and capture their output",
		Long: `pipexec launches a command with its standard streams connected to
anonymous pipes, feeds it input and captures stdout and stderr in memory.

Defaults and named presets are read from pipexec.yml in the working
directory (or --config). Any setting can be overridden with a PIPEXEC_
environment variable, e.g. PIPEXEC_MAX_CAPTURE=1048576.`,
		Version:       pipexec.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetVerbose(verbose)
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")
	cmd.PersistentFlags().String("config", "", "Path to config file (default ./"+config.FileName+")")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pipexec v%s\n", pipexec.Version)
		},
	})

	return cmd
}

// ExitError carries a child's non-zero exit status up to main.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command exited with status %d", e.Code)
}

// ExitCode maps an error returned by Execute to a process exit status.
func ExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// setup loads the config named by --config and builds the diagnostics
// logger for a command.
func setup(cmd *cobra.Command) (*config.Config, logger.Logger, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	level := cfg.LogLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = logger.LevelDebug
	}
	log := logger.NewLogger(level, cmd.ErrOrStderr())

	if path != "" {
		output.Verbose("Loaded config from " + path)
	}
	return cfg, log, nil
}
