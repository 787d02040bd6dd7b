package model

import (
	"fmt"
	"strings"
)

// TaskState represents the lifecycle state of a Task.
type TaskState string

const (
	TaskStatePending   TaskState = "PENDING"
	TaskStateReady     TaskState = "READY"
	TaskStateRunning   TaskState = "RUNNING"
	TaskStateCompleted TaskState = "COMPLETED"
	TaskStateCancelled TaskState = "CANCELLED"
)

// String returns the string representation of the task state.
func (s TaskState) String() string {
	return string(s)
}

// IsTerminal returns true if the task is in a final state.
func (s TaskState) IsTerminal() bool {
	switch s {
	case TaskStateCompleted, TaskStateCancelled:
		return true
	}
	return false
}

// ValidTaskTransitions defines the allowed state transitions for Tasks.
// A Running task always finishes as Completed, even when its cancellation
// flag was raised mid-run.
var ValidTaskTransitions = map[TaskState][]TaskState{
	TaskStatePending: {TaskStateReady, TaskStateCancelled},
	TaskStateReady:   {TaskStateRunning, TaskStateCancelled},
	TaskStateRunning: {TaskStateCompleted},
}

// CanTransitionTo returns true if moving from the current state to next is valid.
func (s TaskState) CanTransitionTo(next TaskState) bool {
	for _, allowed := range ValidTaskTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// BatchState represents the aggregate state of a Batch.
type BatchState string

const (
	BatchStatePending   BatchState = "PENDING"
	BatchStateRunning   BatchState = "RUNNING"
	BatchStateCompleted BatchState = "COMPLETED"
	BatchStateFailed    BatchState = "FAILED"
	BatchStateCancelled BatchState = "CANCELLED"
)

// String returns the string representation of the batch state.
func (s BatchState) String() string {
	return string(s)
}

// IsTerminal returns true if the batch is in a final state.
func (s BatchState) IsTerminal() bool {
	switch s {
	case BatchStateCompleted, BatchStateFailed, BatchStateCancelled:
		return true
	}
	return false
}

// Priority orders Ready tasks competing for a free execution slot.
type Priority int

const (
	PriorityVeryLow Priority = iota - 2
	PriorityLow
	PriorityNormal
	PriorityHigh
	PriorityVeryHigh
)

var priorityNames = map[Priority]string{
	PriorityVeryLow:  "very-low",
	PriorityLow:      "low",
	PriorityNormal:   "normal",
	PriorityHigh:     "high",
	PriorityVeryHigh: "very-high",
}

func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return fmt.Sprintf("priority(%d)", int(p))
}

// ParsePriority converts a priority name to a Priority.
func ParsePriority(s string) (Priority, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	if want == "" {
		return PriorityNormal, nil
	}
	for p, name := range priorityNames {
		if name == want {
			return p, nil
		}
	}
	return PriorityNormal, fmt.Errorf("unknown priority %q", s)
}
