package cli

import (
	"fmt"
	"time"

	"github.com/me/concdemo/pkg/model"
	"github.com/spf13/cobra"
)

func newStartCmd() *cobra.Command {
	var wait bool
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "start <mode>",
		Short: "Start a batch on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			ctx := cmd.Context()
			var b model.Batch
			if _, err := client.Post(ctx, "/api/v1/batches/", map[string]string{"mode": args[0]}, &b); err != nil {
				return fmt.Errorf("start batch: %w", err)
			}
			fmt.Fprintf(out, "Batch started: %s (%s)\n", b.ID, b.Mode)
			if !wait {
				return nil
			}

			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for !b.State.IsTerminal() {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
				}
				if _, err := client.Get(ctx, "/api/v1/batches/"+b.ID, &b); err != nil {
					return fmt.Errorf("poll batch: %w", err)
				}
			}
			printBatch(out, b)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Wait for the batch to finish and print it")
	cmd.Flags().DurationVar(&interval, "interval", 250*time.Millisecond, "Polling interval with --wait")

	return cmd
}
