package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/me/concdemo/pkg/model"
)

// printBatch writes a batch and its tasks.
func printBatch(w io.Writer, b model.Batch) {
	fmt.Fprintf(w, "Batch: %s\n", b.ID)
	fmt.Fprintf(w, "  Mode:  %s\n", b.Mode)
	fmt.Fprintf(w, "  State: %s\n", b.State)

	s := b.TaskSummary
	fmt.Fprintf(w, "  Tasks: %d total", s.Total)
	if s.Completed > 0 {
		fmt.Fprintf(w, ", %d completed", s.Completed)
	}
	if s.Running > 0 {
		fmt.Fprintf(w, ", %d running", s.Running)
	}
	if n := s.Pending + s.Ready; n > 0 {
		fmt.Fprintf(w, ", %d waiting", n)
	}
	if s.Failed > 0 {
		fmt.Fprintf(w, ", %d failed", s.Failed)
	}
	if s.Cancelled > 0 {
		fmt.Fprintf(w, ", %d cancelled", s.Cancelled)
	}
	fmt.Fprintln(w)

	if len(b.Tasks) > 0 {
		fmt.Fprintln(w, "  Steps:")
		for _, t := range b.Tasks {
			line := fmt.Sprintf("    - %s: %s", t.Name, t.State)
			if t.Cancelled && t.State != model.TaskStateCancelled {
				line += " (cancel requested)"
			}
			if t.Error != "" {
				line += " error=" + t.Error
			}
			fmt.Fprintln(w, line)
		}
	}
	if b.CompletedAt != nil {
		fmt.Fprintf(w, "  Finished in %s\n", b.CompletedAt.Sub(b.CreatedAt).Round(time.Millisecond))
	}
}

// printBatchList writes one line per batch.
func printBatchList(w io.Writer, batches []model.Batch) {
	fmt.Fprintf(w, "%-42s  %-11s  %-10s  %s\n", "ID", "MODE", "STATE", "CREATED")
	fmt.Fprintf(w, "%-42s  %-11s  %-10s  %s\n", "--", "----", "-----", "-------")
	for _, b := range batches {
		fmt.Fprintf(w, "%-42s  %-11s  %-10s  %s\n", b.ID, b.Mode, b.State, b.CreatedAt.Format("15:04:05"))
	}
}

// printGallery writes the image slots and slider label.
func printGallery(w io.Writer, g model.Gallery) {
	fmt.Fprintln(w, "Gallery:")
	for _, slot := range g.Slots {
		if slot.Empty() {
			fmt.Fprintf(w, "  [%d] (empty)\n", slot.Index+1)
			continue
		}
		fmt.Fprintf(w, "  [%d] %s (%s, %d bytes)\n", slot.Index+1, slot.Source, slot.ContentType, slot.Size)
	}
	fmt.Fprintf(w, "Slider: %s\n", g.SliderLabel)
}
