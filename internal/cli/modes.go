package cli

import (
	"fmt"

	"github.com/me/concdemo/internal/demo"
	"github.com/spf13/cobra"
)

func newModesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List scheduling modes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, m := range demo.Modes {
				fmt.Fprintf(out, "%-11s  %s\n", m, m.Description())
			}
			return nil
		},
	}
}
