package model

import (
	"time"
)

// Task is the serializable snapshot of a queued unit of work.
type Task struct {
	ID        string    `json:"id"`
	BatchID   string    `json:"batch_id,omitempty"`
	Name      string    `json:"name"`
	State     TaskState `json:"state"`
	Priority  Priority  `json:"priority"`
	DependsOn []string  `json:"depends_on,omitempty"`

	// Cancelled reports the cancellation flag, which may be set on a task
	// that still finished as COMPLETED.
	Cancelled bool `json:"cancelled"`

	// Error holds the body failure message for COMPLETED tasks that failed.
	Error string `json:"error,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Failed returns true if the task finished with a body error.
func (t *Task) Failed() bool {
	return t.State == TaskStateCompleted && t.Error != ""
}
