package cli

import (
	"fmt"

	"github.com/me/concdemo/pkg/model"
	"github.com/spf13/cobra"
)

func newGalleryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gallery",
		Short: "Show the server's gallery",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var g model.Gallery
			if _, err := client.Get(cmd.Context(), "/api/v1/gallery", &g); err != nil {
				return fmt.Errorf("get gallery: %w", err)
			}
			printGallery(cmd.OutOrStdout(), g)
			return nil
		},
	}
}
