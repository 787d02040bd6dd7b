package model

import "testing"

func TestTaskState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    TaskState
		terminal bool
	}{
		{TaskStatePending, false},
		{TaskStateReady, false},
		{TaskStateRunning, false},
		{TaskStateCompleted, true},
		{TaskStateCancelled, true},
	}
	for _, tt := range tests {
		if got := tt.state.IsTerminal(); got != tt.terminal {
			t.Errorf("TaskState(%q).IsTerminal() = %v, want %v", tt.state, got, tt.terminal)
		}
	}
}

func TestTaskState_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from  TaskState
		to    TaskState
		valid bool
	}{
		// Valid transitions
		{TaskStatePending, TaskStateReady, true},
		{TaskStatePending, TaskStateCancelled, true},
		{TaskStateReady, TaskStateRunning, true},
		{TaskStateReady, TaskStateCancelled, true},
		{TaskStateRunning, TaskStateCompleted, true},

		// Invalid transitions
		{TaskStatePending, TaskStateRunning, false},
		{TaskStatePending, TaskStateCompleted, false},
		{TaskStateRunning, TaskStateCancelled, false},
		{TaskStateRunning, TaskStatePending, false},
		{TaskStateCompleted, TaskStatePending, false},
		{TaskStateCompleted, TaskStateCancelled, false},
		{TaskStateCancelled, TaskStateReady, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.valid {
			t.Errorf("TaskState(%q).CanTransitionTo(%q) = %v, want %v", tt.from, tt.to, got, tt.valid)
		}
	}
}

func TestBatchState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    BatchState
		terminal bool
	}{
		{BatchStatePending, false},
		{BatchStateRunning, false},
		{BatchStateCompleted, true},
		{BatchStateFailed, true},
		{BatchStateCancelled, true},
	}
	for _, tt := range tests {
		if got := tt.state.IsTerminal(); got != tt.terminal {
			t.Errorf("BatchState(%q).IsTerminal() = %v, want %v", tt.state, got, tt.terminal)
		}
	}
}

func TestPriority_Ordering(t *testing.T) {
	order := []Priority{PriorityVeryLow, PriorityLow, PriorityNormal, PriorityHigh, PriorityVeryHigh}
	for i := 1; i < len(order); i++ {
		if order[i-1] >= order[i] {
			t.Errorf("%s should sort below %s", order[i-1], order[i])
		}
	}
	if PriorityNormal != 0 {
		t.Errorf("PriorityNormal = %d, want 0 (zero value)", PriorityNormal)
	}
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		input   string
		want    Priority
		wantErr bool
	}{
		{"", PriorityNormal, false},
		{"normal", PriorityNormal, false},
		{"HIGH", PriorityHigh, false},
		{" very-low ", PriorityVeryLow, false},
		{"very-high", PriorityVeryHigh, false},
		{"urgent", PriorityNormal, true},
	}
	for _, tt := range tests {
		got, err := ParsePriority(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePriority(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePriority(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
