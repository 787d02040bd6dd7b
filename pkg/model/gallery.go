package model

import "time"

// Slot is one image view of the gallery.
type Slot struct {
	Index       int        `json:"index"`
	Source      string     `json:"source,omitempty"`
	ContentType string     `json:"content_type,omitempty"`
	Size        int        `json:"size"`
	BatchID     string     `json:"batch_id,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// Empty returns true if no image has been shown in the slot yet.
func (s Slot) Empty() bool {
	return s.Source == ""
}

// Gallery is a read-only snapshot of the display state.
type Gallery struct {
	Slots       []Slot `json:"slots"`
	SliderLabel string `json:"slider_label"`
}
