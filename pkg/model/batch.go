package model

import "time"

// Batch is one invocation of a demo mode: a fresh queue and the tasks
// submitted to it.
type Batch struct {
	ID            string      `json:"id"`
	Mode          string      `json:"mode"`
	State         BatchState  `json:"state"`
	MaxConcurrent int         `json:"max_concurrent"`
	Tasks         []Task      `json:"tasks,omitempty"`
	TaskSummary   TaskSummary `json:"task_summary"` // Computed field
	CreatedAt     time.Time   `json:"created_at"`
	CompletedAt   *time.Time  `json:"completed_at"`
}

// TaskSummary provides an aggregate count of task states within a Batch.
type TaskSummary struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Ready     int `json:"ready"`
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
}

// ComputeTaskSummary calculates the TaskSummary from a slice of Tasks.
// Failed tasks are counted in both Completed and Failed.
func ComputeTaskSummary(tasks []Task) TaskSummary {
	s := TaskSummary{Total: len(tasks)}
	for i := range tasks {
		t := &tasks[i]
		switch t.State {
		case TaskStatePending:
			s.Pending++
		case TaskStateReady:
			s.Ready++
		case TaskStateRunning:
			s.Running++
		case TaskStateCompleted:
			s.Completed++
			if t.Failed() {
				s.Failed++
			}
		case TaskStateCancelled:
			s.Cancelled++
		}
	}
	return s
}

// DeriveBatchState computes the aggregate batch state from a task summary.
func DeriveBatchState(s TaskSummary) BatchState {
	terminal := s.Completed + s.Cancelled
	switch {
	case terminal == s.Total:
		if s.Cancelled > 0 {
			return BatchStateCancelled
		}
		if s.Failed > 0 {
			return BatchStateFailed
		}
		return BatchStateCompleted
	case s.Running > 0 || terminal > 0:
		return BatchStateRunning
	default:
		return BatchStatePending
	}
}
