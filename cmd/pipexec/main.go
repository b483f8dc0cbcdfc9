package main

import (
	"errors"
	"os"

	"github.com/simonhull/pipexec/internal/commands"
	"github.com/simonhull/pipexec/output"
)

func main() {
	rootCmd := commands.RootCmd()

	rootCmd.AddCommand(commands.RunCmd())
	rootCmd.AddCommand(commands.PresetCmd())
	rootCmd.AddCommand(commands.WhereCmd())

	if err := rootCmd.Execute(); err != nil {
		var exitErr *commands.ExitError
		if !errors.As(err, &exitErr) {
			output.Error(err.Error())
		}
		os.Exit(commands.ExitCode(err))
	}
}
