package opqueue

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/me/concdemo/pkg/model"
)

// Body is the work a Task performs. ctx is cancelled as soon as the task's
// cancellation flag is raised; long-running bodies should poll it.
type Body func(ctx context.Context) (any, error)

// Result is handed to a Task's completion callback exactly once.
type Result struct {
	TaskID string
	Name   string
	State  model.TaskState // COMPLETED or CANCELLED
	Value  any
	Err    error // *TaskFailure when the body failed
	// Cancelled is the final value of the cancellation flag. A COMPLETED
	// result may still report Cancelled when the flag was raised mid-run.
	Cancelled  bool
	StartedAt  time.Time
	FinishedAt time.Time
}

// Success returns true if the body ran to completion without error.
func (r Result) Success() bool {
	return r.State == model.TaskStateCompleted && r.Err == nil
}

// TaskOption configures a Task at creation time.
type TaskOption func(*Task)

// WithPriority sets the admission priority among Ready tasks.
func WithPriority(p model.Priority) TaskOption {
	return func(t *Task) {
		t.priority = p
	}
}

// WithCompletion registers the completion callback.
func WithCompletion(fn func(Result)) TaskOption {
	return func(t *Task) {
		t.onComplete = fn
	}
}

// Task is a single schedulable unit of work owned by a WorkQueue.
type Task struct {
	id         string
	name       string
	q          *WorkQueue
	body       Body
	priority   model.Priority
	onComplete func(Result)
	createdAt  time.Time

	ctx       context.Context
	cancelCtx context.CancelFunc
	cancelled atomic.Bool
	done      chan struct{}

	// Guarded by q.mu.
	state      model.TaskState
	deps       []string
	dependents []string
	submitted  bool
	seq        uint64
	startedAt  time.Time
	result     *Result
}

// ID returns the task's unique identifier.
func (t *Task) ID() string { return t.id }

// Name returns the task's human-readable name.
func (t *Task) Name() string { return t.name }

// Priority returns the task's admission priority.
func (t *Task) Priority() model.Priority { return t.priority }

// IsCancelled reports whether cancellation has been requested. Once true it
// stays true.
func (t *Task) IsCancelled() bool {
	return t.cancelled.Load()
}

// Done is closed once the task is terminal and its completion callback has
// returned.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// State returns the current lifecycle state.
func (t *Task) State() model.TaskState {
	t.q.mu.Lock()
	defer t.q.mu.Unlock()
	return t.state
}

// Dependencies returns the ids of the task's predecessors.
func (t *Task) Dependencies() []string {
	t.q.mu.Lock()
	defer t.q.mu.Unlock()
	return slices.Clone(t.deps)
}

// Result returns the final result once the task is terminal.
func (t *Task) Result() (Result, bool) {
	t.q.mu.Lock()
	defer t.q.mu.Unlock()
	if t.result == nil {
		return Result{}, false
	}
	return *t.result, true
}

// AddDependency makes t wait for dep to complete before it becomes Ready.
// It fails with a *CycleError if dep already (transitively) depends on t,
// and with ErrAlreadyTerminal once t has left the PENDING state. Adding an
// existing edge is a no-op.
func (t *Task) AddDependency(dep *Task) error {
	q := t.q
	if dep == nil {
		return fmt.Errorf("add dependency to %s: nil task", t.id)
	}
	if dep.q != q {
		return fmt.Errorf("add dependency %s -> %s: %w", t.id, dep.id, ErrForeignTask)
	}

	q.mu.Lock()
	if t.state != model.TaskStatePending {
		state := t.state
		q.mu.Unlock()
		return fmt.Errorf("add dependency to %s (%s): %w", t.id, state, ErrAlreadyTerminal)
	}
	if slices.Contains(t.deps, dep.id) {
		q.mu.Unlock()
		return nil
	}
	if path := q.pathLocked(dep.id, t.id); path != nil {
		q.mu.Unlock()
		return &CycleError{Path: append([]string{t.id}, path...)}
	}

	t.deps = append(t.deps, dep.id)
	dep.dependents = append(dep.dependents, t.id)

	// A cancelled predecessor can never complete, so a submitted dependent
	// has to follow it.
	fx := &effects{}
	q.evaluateLocked(t, fx)
	q.mu.Unlock()
	q.apply(fx)
	return nil
}

// Cancel raises the cancellation flag. A task that has not started moves to
// CANCELLED and its completion callback fires once; a running task only
// observes the flag. Repeated calls have no further effect.
func (t *Task) Cancel() {
	q := t.q
	q.mu.Lock()
	fx := &effects{}
	q.cancelLocked(t, fx)
	q.mu.Unlock()
	q.apply(fx)
}

// Snapshot returns a serializable copy of the task.
func (t *Task) Snapshot() model.Task {
	t.q.mu.Lock()
	defer t.q.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Task) snapshotLocked() model.Task {
	rec := model.Task{
		ID:        t.id,
		Name:      t.name,
		State:     t.state,
		Priority:  t.priority,
		DependsOn: slices.Clone(t.deps),
		Cancelled: t.cancelled.Load(),
		CreatedAt: t.createdAt,
	}
	if !t.startedAt.IsZero() {
		started := t.startedAt
		rec.StartedAt = &started
	}
	if t.result != nil {
		finished := t.result.FinishedAt
		rec.CompletedAt = &finished
		if t.result.Err != nil {
			rec.Error = t.result.Err.Error()
		}
	}
	return rec
}

// invoke runs the body, converting a panic into an error.
func (t *Task) invoke() (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanic, r)
		}
	}()
	if t.body == nil {
		return nil, nil
	}
	return t.body(t.ctx)
}

func newTaskID() string {
	return "task_" + uuid.New().String()
}
