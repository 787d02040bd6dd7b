package opqueue

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrCycle            = errors.New("dependency cycle")
	ErrAlreadyTerminal  = errors.New("task already scheduled or finished")
	ErrAlreadySubmitted = errors.New("task already submitted")
	ErrForeignTask      = errors.New("task belongs to another queue")
	ErrTaskPanic        = errors.New("task body panicked")
)

// CycleError reports the dependency path that an edge would have closed.
// Path starts and ends with the same task id.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	if e == nil || len(e.Path) == 0 {
		return ErrCycle.Error()
	}
	return fmt.Sprintf("%s: %s", ErrCycle, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// TaskFailure carries the error returned (or panic raised) by a task body.
// The queue never inspects it; it is only handed to the completion callback.
type TaskFailure struct {
	TaskID string
	Err    error
}

func (e *TaskFailure) Error() string {
	return fmt.Sprintf("task %s failed: %v", e.TaskID, e.Err)
}

func (e *TaskFailure) Unwrap() error { return e.Err }
