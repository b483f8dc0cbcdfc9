package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/pipexec/exec"
	"github.com/simonhull/pipexec/output"
)

// PresetCmd creates the preset command group
func PresetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "List and run presets from the config file",
	}

	cmd.AddCommand(presetListCmd(), presetRunCmd())
	return cmd
}

func presetListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(cmd)
			if err != nil {
				return err
			}
			registry, err := cfg.Registry()
			if err != nil {
				return err
			}

			if registry.Size() == 0 {
				output.Info("No presets configured")
				return nil
			}

			for _, name := range registry.List() {
				p, _ := registry.Get(name)
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, p.CommandLine)
				if p.Description != "" {
					output.Step(p.Description)
				}
			}
			return nil
		},
	}
}

func presetRunCmd() *cobra.Command {
	var (
		wait   bool
		render renderOptions
	)

	cmd := &cobra.Command{
		Use:   "run NAME",
		Short: "Run a configured preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := render.validate(); err != nil {
				return err
			}

			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			registry, err := cfg.Registry()
			if err != nil {
				return err
			}

			name := args[0]
			p, ok := registry.Get(name)
			if !ok {
				return fmt.Errorf("preset '%s' not found (see 'pipexec preset list')", name)
			}

			opts := cfg.ExecutorOptions(log)
			if cmd.Flags().Changed("wait") {
				opts.Wait = wait
			}
			output.Verbose("Running preset " + name + ": " + p.CommandLine)

			return execute(cmd, exec.NewExecutor(opts), p.CommandLine, func(ctx context.Context, e *exec.Executor) (*exec.Result, error) {
				return registry.Execute(ctx, name, e)
			}, render)
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for the command and exit with its status")
	render.addFlags(cmd)
	return cmd
}
