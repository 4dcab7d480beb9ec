package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func buildVersionCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b := e.build
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "termcore %s (commit: %s, built: %s)\n", b.Version, b.Commit, b.Date)
			return err
		},
	}
}
