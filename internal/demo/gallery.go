package demo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/me/concdemo/internal/fetcher"
	"github.com/me/concdemo/pkg/model"
)

// ErrSinkClosed is returned when the UI sink no longer accepts updates.
var ErrSinkClosed = errors.New("ui sink closed")

// Sink runs display updates on a single goroutine. *mainloop.Loop
// satisfies it.
type Sink interface {
	Post(fn func()) bool
	Do(ctx context.Context, fn func()) error
}

// Gallery is the display state: one slot per image source plus the slider
// label. Its fields are only touched from closures running on the sink.
type Gallery struct {
	sink  Sink
	slots []model.Slot
	label string
}

// NewGallery creates a gallery with n empty slots.
func NewGallery(sink Sink, n int) *Gallery {
	slots := make([]model.Slot, n)
	for i := range slots {
		slots[i].Index = i
	}
	return &Gallery{sink: sink, slots: slots, label: "0.0"}
}

// Show posts an update placing img into slot.
func (g *Gallery) Show(slot int, img *fetcher.Image, batchID string) error {
	if slot < 0 || slot >= len(g.slots) {
		return fmt.Errorf("slot %d out of range [0,%d)", slot, len(g.slots))
	}
	ok := g.sink.Post(func() {
		now := time.Now().UTC()
		g.slots[slot] = model.Slot{
			Index:       slot,
			Source:      img.Source,
			ContentType: img.ContentType,
			Size:        img.Size(),
			BatchID:     batchID,
			UpdatedAt:   &now,
		}
	})
	if !ok {
		return ErrSinkClosed
	}
	return nil
}

// SetLabel posts an update of the slider label.
func (g *Gallery) SetLabel(text string) error {
	if !g.sink.Post(func() { g.label = text }) {
		return ErrSinkClosed
	}
	return nil
}

// Snapshot reads the display state on the sink.
func (g *Gallery) Snapshot(ctx context.Context) (model.Gallery, error) {
	var out model.Gallery
	err := g.sink.Do(ctx, func() {
		out.Slots = make([]model.Slot, len(g.slots))
		copy(out.Slots, g.slots)
		out.SliderLabel = g.label
	})
	if err != nil {
		return model.Gallery{}, fmt.Errorf("gallery snapshot: %w", err)
	}
	return out, nil
}

// SliderLabel formats a slider position in [0,1] as the percentage text the
// label shows, e.g. 0.5 -> "50.0".
func SliderLabel(value float64) (string, error) {
	if math.IsNaN(value) || value < 0 || value > 1 {
		return "", fmt.Errorf("slider value %v out of range [0,1]", value)
	}
	s := strconv.FormatFloat(float64(float32(value)*100), 'f', -1, 32)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s, nil
}
