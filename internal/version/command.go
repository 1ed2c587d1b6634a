package version

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AttachCobraVersionCommand adds a `version` subcommand to root.
func AttachCobraVersionCommand(root *cobra.Command) {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information.",
		Long:  "Print the bootstrapper version, target platform, commit and build time.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			line := Full()
			if short {
				line = Short()
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), line)
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "print only the version number")
	root.AddCommand(cmd)
}
