package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newSliderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "slider <value>",
		Short: "Move the slider to a position in [0,1]",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("slider value %q: %w", args[0], err)
			}

			var data struct {
				Label string `json:"label"`
			}
			if _, err := client.Put(cmd.Context(), "/api/v1/slider", map[string]float64{"value": v}, &data); err != nil {
				return fmt.Errorf("set slider: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Slider: %s\n", data.Label)
			return nil
		},
	}
}
