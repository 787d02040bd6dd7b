package cli

import (
	"fmt"

	"github.com/me/concdemo/pkg/model"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [batch_id]",
		Short: "Show one batch, or list all batches",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				var b model.Batch
				if _, err := client.Get(cmd.Context(), "/api/v1/batches/"+args[0], &b); err != nil {
					return fmt.Errorf("get batch: %w", err)
				}
				printBatch(out, b)
				return nil
			}

			var batches []model.Batch
			resp, err := client.Get(cmd.Context(), "/api/v1/batches/?limit=100", &batches)
			if err != nil {
				return fmt.Errorf("list batches: %w", err)
			}
			if len(batches) == 0 {
				fmt.Fprintln(out, "No batches found.")
				return nil
			}
			printBatchList(out, batches)
			if resp.Pagination != nil && resp.Pagination.HasMore {
				fmt.Fprintf(out, "\n(%d of %d shown)\n", len(batches), resp.Pagination.Total)
			}
			return nil
		},
	}
}
