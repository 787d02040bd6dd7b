package cli

import (
	"fmt"

	"github.com/me/concdemo/pkg/model"
	"github.com/spf13/cobra"
)

func newCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel [batch_id]",
		Short: "Cancel a batch (default: the most recent one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/batches/cancel"
			if len(args) == 1 {
				path = "/api/v1/batches/" + args[0] + "/cancel"
			}

			var b model.Batch
			if _, err := client.Put(cmd.Context(), path, nil, &b); err != nil {
				return fmt.Errorf("cancel batch: %w", err)
			}

			s := b.TaskSummary
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Batch %s: %s\n", b.ID, b.State)
			fmt.Fprintf(out, "  Tasks cancelled: %d\n", s.Cancelled)
			fmt.Fprintf(out, "  Tasks already completed: %d\n", s.Completed)
			return nil
		},
	}
}
