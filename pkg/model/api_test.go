package model

import "testing"

func TestListOptions_Clamp(t *testing.T) {
	tests := []struct {
		name       string
		input      ListOptions
		wantLimit  int
		wantOffset int
	}{
		{"defaults", ListOptions{Limit: 0, Offset: 0}, 20, 0},
		{"negative limit", ListOptions{Limit: -5, Offset: 0}, 20, 0},
		{"over max", ListOptions{Limit: 200, Offset: 0}, 100, 0},
		{"negative offset", ListOptions{Limit: 10, Offset: -3}, 10, 0},
		{"valid", ListOptions{Limit: 50, Offset: 10}, 50, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.input.Clamp()
			if tt.input.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", tt.input.Limit, tt.wantLimit)
			}
			if tt.input.Offset != tt.wantOffset {
				t.Errorf("Offset = %d, want %d", tt.input.Offset, tt.wantOffset)
			}
		})
	}
}

func TestListOptions_Page(t *testing.T) {
	tests := []struct {
		name      string
		opts      ListOptions
		n         int
		wantStart int
		wantEnd   int
		wantMore  bool
	}{
		{"first page", ListOptions{Limit: 2, Offset: 0}, 5, 0, 2, true},
		{"last page", ListOptions{Limit: 2, Offset: 4}, 5, 4, 5, false},
		{"past end", ListOptions{Limit: 2, Offset: 9}, 5, 5, 5, false},
		{"empty", ListOptions{Limit: 20, Offset: 0}, 0, 0, 0, false},
		{"unclamped", ListOptions{Limit: 0, Offset: -1}, 30, 0, 20, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, pg := tt.opts.Page(tt.n)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("Page(%d) = [%d:%d], want [%d:%d]", tt.n, start, end, tt.wantStart, tt.wantEnd)
			}
			if pg.HasMore != tt.wantMore {
				t.Errorf("HasMore = %v, want %v", pg.HasMore, tt.wantMore)
			}
			if pg.Total != tt.n {
				t.Errorf("Total = %d, want %d", pg.Total, tt.n)
			}
		})
	}
}

func TestListOptions_Matches(t *testing.T) {
	all := ListOptions{}
	if !all.Matches(BatchStateRunning) || !all.Matches(BatchStateCancelled) {
		t.Error("empty filter should match every state")
	}
	running := ListOptions{State: BatchStateRunning}
	if !running.Matches(BatchStateRunning) {
		t.Error("RUNNING filter should match RUNNING")
	}
	if running.Matches(BatchStateCompleted) {
		t.Error("RUNNING filter should not match COMPLETED")
	}
}
