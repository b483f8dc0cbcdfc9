package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/pipexec/installdir"
)

// WhereCmd prints the installation directory
func WhereCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "where",
		Short: "Print the installation directory",
		Long: `Print the directory pipexec is installed in, derived from the location
of the running executable. The executable is expected in <dir>/bin unless
` + installdir.AltSrcDirEnv + ` is set to a true value.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := installdir.Discover()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
