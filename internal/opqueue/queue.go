package opqueue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/me/concdemo/internal/logging"
	"github.com/me/concdemo/pkg/model"
)

// Config holds WorkQueue configuration.
type Config struct {
	// Name labels the queue in logs.
	Name string

	// MaxConcurrent caps the number of RUNNING tasks. 0 means unbounded,
	// 1 makes the queue serial.
	MaxConcurrent int
}

// DefaultConfig returns an unbounded queue configuration.
func DefaultConfig() Config {
	return Config{Name: "default", MaxConcurrent: 0}
}

// SerialConfig returns a configuration that runs one task at a time.
func SerialConfig(name string) Config {
	return Config{Name: name, MaxConcurrent: 1}
}

// Event describes a single task state transition.
type Event struct {
	TaskID string
	Name   string
	From   model.TaskState
	To     model.TaskState
	At     time.Time
}

// Option configures optional WorkQueue behaviour.
type Option func(*WorkQueue)

// WithObserver registers a function that receives every state transition.
// It is called outside the queue lock, from whichever goroutine caused the
// transition.
func WithObserver(fn func(Event)) Option {
	return func(q *WorkQueue) {
		q.observers = append(q.observers, fn)
	}
}

// WorkQueue admits Ready tasks to worker goroutines within its
// concurrency limit.
type WorkQueue struct {
	cfg       Config
	logger    *slog.Logger
	observers []func(Event)

	mu          sync.Mutex
	tasks       map[string]*Task
	order       []*Task // submitted tasks, submission order
	ready       []*Task
	running     int
	suspended   bool
	seq         uint64
	outstanding int // submitted tasks whose callback has not returned
	idle        chan struct{}
}

// New creates an empty WorkQueue. A nil logger discards output.
func New(cfg Config, logger *slog.Logger, opts ...Option) *WorkQueue {
	if cfg.MaxConcurrent < 0 {
		cfg.MaxConcurrent = 0
	}
	q := &WorkQueue{
		cfg:    cfg,
		logger: logging.OrDiscard(logger).With("component", "workqueue", "queue", cfg.Name),
		tasks:  make(map[string]*Task),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Name returns the configured queue name.
func (q *WorkQueue) Name() string { return q.cfg.Name }

// MaxConcurrent returns the current concurrency limit (0 = unbounded).
func (q *WorkQueue) MaxConcurrent() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.cfg.MaxConcurrent
}

// SetMaxConcurrent changes the concurrency limit. Raising it admits waiting
// Ready tasks immediately; lowering it never interrupts running ones.
func (q *WorkQueue) SetMaxConcurrent(n int) {
	if n < 0 {
		n = 0
	}
	q.mu.Lock()
	q.cfg.MaxConcurrent = n
	fx := &effects{}
	q.dispatchLocked(fx)
	q.mu.Unlock()
	q.apply(fx)
}

// SetSuspended stops (true) or resumes (false) admission of Ready tasks.
// Running tasks are unaffected.
func (q *WorkQueue) SetSuspended(suspended bool) {
	q.mu.Lock()
	q.suspended = suspended
	fx := &effects{}
	q.dispatchLocked(fx)
	q.mu.Unlock()
	q.apply(fx)
}

// Suspended reports whether admission is paused.
func (q *WorkQueue) Suspended() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.suspended
}

// NewTask creates a PENDING task owned by q. It does not run until
// submitted.
func (q *WorkQueue) NewTask(name string, body Body, opts ...TaskOption) *Task {
	ctx, cancel := context.WithCancel(context.Background())
	t := &Task{
		id:        newTaskID(),
		name:      name,
		q:         q,
		body:      body,
		priority:  model.PriorityNormal,
		createdAt: time.Now().UTC(),
		ctx:       ctx,
		cancelCtx: cancel,
		done:      make(chan struct{}),
		state:     model.TaskStatePending,
	}
	if t.name == "" {
		t.name = t.id
	}
	for _, opt := range opts {
		opt(t)
	}

	q.mu.Lock()
	q.tasks[t.id] = t
	q.mu.Unlock()
	return t
}

// AddTask creates a task and submits it in one step.
func (q *WorkQueue) AddTask(name string, body Body, opts ...TaskOption) (*Task, error) {
	t := q.NewTask(name, body, opts...)
	if err := q.Submit(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Submit hands tasks to the scheduler. A task whose predecessors are all
// COMPLETED becomes READY at once; otherwise it stays PENDING. Either all
// tasks are submitted or none are.
func (q *WorkQueue) Submit(tasks ...*Task) error {
	q.mu.Lock()
	seen := make(map[*Task]bool, len(tasks))
	for _, t := range tasks {
		if err := q.checkSubmittableLocked(t); err != nil {
			q.mu.Unlock()
			return err
		}
		if seen[t] {
			q.mu.Unlock()
			return fmt.Errorf("submit %s: %w", t.id, ErrAlreadySubmitted)
		}
		seen[t] = true
	}

	fx := &effects{}
	for _, t := range tasks {
		q.seq++
		t.seq = q.seq
		t.submitted = true
		q.order = append(q.order, t)
		q.outstanding++
		q.logger.Debug("task submitted", "task_id", t.id, "name", t.name, "depends_on", t.deps)
	}
	for _, t := range tasks {
		q.evaluateLocked(t, fx)
	}
	q.dispatchLocked(fx)
	q.mu.Unlock()

	q.apply(fx)
	return nil
}

func (q *WorkQueue) checkSubmittableLocked(t *Task) error {
	if t == nil {
		return fmt.Errorf("submit: nil task")
	}
	if t.q != q {
		return fmt.Errorf("submit %s: %w", t.id, ErrForeignTask)
	}
	if t.submitted {
		return fmt.Errorf("submit %s: %w", t.id, ErrAlreadySubmitted)
	}
	if t.state != model.TaskStatePending {
		return fmt.Errorf("submit %s (%s): %w", t.id, t.state, ErrAlreadyTerminal)
	}
	return nil
}

// CancelAll raises the cancellation flag on every submitted task that has
// not finished. Tasks that have not started are CANCELLED immediately;
// running tasks are left to observe the flag.
func (q *WorkQueue) CancelAll() {
	q.mu.Lock()
	fx := &effects{}
	for _, t := range q.order {
		q.cancelLocked(t, fx)
	}
	q.logger.Info("cancel all", "cancelled", len(fx.finished), "running", q.running)
	q.mu.Unlock()
	q.apply(fx)
}

// Wait blocks until every submitted task is terminal and its completion
// callback has returned, or ctx is done.
func (q *WorkQueue) Wait(ctx context.Context) error {
	q.mu.Lock()
	if q.outstanding == 0 {
		q.mu.Unlock()
		return nil
	}
	if q.idle == nil {
		q.idle = make(chan struct{})
	}
	idle := q.idle
	q.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Task looks up a task by id.
func (q *WorkQueue) Task(id string) (*Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	t, ok := q.tasks[id]
	return t, ok
}

// Tasks returns the submitted tasks in submission order.
func (q *WorkQueue) Tasks() []*Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*Task, len(q.order))
	copy(out, q.order)
	return out
}

// Snapshot returns serializable copies of the submitted tasks.
func (q *WorkQueue) Snapshot() []model.Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]model.Task, len(q.order))
	for i, t := range q.order {
		out[i] = t.snapshotLocked()
	}
	return out
}

// Stats returns aggregate state counts for the submitted tasks.
func (q *WorkQueue) Stats() model.TaskSummary {
	return model.ComputeTaskSummary(q.Snapshot())
}

// effects collects work that must happen after the queue lock is released.
type effects struct {
	events   []Event
	finished []*Task // terminal, callback pending
	start    []*Task // admitted to RUNNING
}

// apply delivers observer events, fires completion callbacks, then starts
// newly admitted tasks. Callbacks of tasks finished by a transition run
// before any task that transition unblocked.
func (q *WorkQueue) apply(fx *effects) {
	for _, ev := range fx.events {
		for _, obs := range q.observers {
			obs(ev)
		}
	}
	for _, t := range fx.finished {
		q.finish(t)
	}
	for _, t := range fx.start {
		go q.execute(t)
	}
}

func (q *WorkQueue) transitionLocked(t *Task, to model.TaskState, fx *effects) bool {
	from := t.state
	if !from.CanTransitionTo(to) {
		q.logger.Error("invalid task transition", "task_id", t.id, "from", from, "to", to)
		return false
	}
	t.state = to
	fx.events = append(fx.events, Event{TaskID: t.id, Name: t.name, From: from, To: to, At: time.Now().UTC()})
	q.logger.Debug("task state", "task_id", t.id, "name", t.name, "from", from, "to", to)
	return true
}

// evaluateLocked moves a submitted PENDING task to READY once every
// predecessor is COMPLETED, or cancels it when a predecessor was cancelled.
func (q *WorkQueue) evaluateLocked(t *Task, fx *effects) {
	if !t.submitted || t.state != model.TaskStatePending {
		return
	}
	satisfied := true
	for _, id := range t.deps {
		dep := q.tasks[id]
		switch dep.state {
		case model.TaskStateCancelled:
			q.logger.Info("task cancelled (predecessor cancelled)", "task_id", t.id, "predecessor", dep.id)
			q.cancelLocked(t, fx)
			return
		case model.TaskStateCompleted:
		default:
			satisfied = false
		}
	}
	if satisfied && q.transitionLocked(t, model.TaskStateReady, fx) {
		q.pushReadyLocked(t)
	}
}

// dispatchLocked admits Ready tasks while capacity allows.
func (q *WorkQueue) dispatchLocked(fx *effects) {
	if q.suspended {
		return
	}
	for len(q.ready) > 0 && (q.cfg.MaxConcurrent == 0 || q.running < q.cfg.MaxConcurrent) {
		t := q.ready[0]
		q.ready = q.ready[1:]
		if !q.transitionLocked(t, model.TaskStateRunning, fx) {
			continue
		}
		t.startedAt = time.Now().UTC()
		q.running++
		fx.start = append(fx.start, t)
	}
}

// cancelLocked raises t's flag and cancels it if it has not started.
func (q *WorkQueue) cancelLocked(t *Task, fx *effects) {
	if t.state.IsTerminal() {
		return
	}
	if !t.cancelled.Swap(true) {
		t.cancelCtx()
	}
	if t.state == model.TaskStateRunning {
		return
	}
	if t.state == model.TaskStateReady {
		q.removeReadyLocked(t)
	}
	if !q.transitionLocked(t, model.TaskStateCancelled, fx) {
		return
	}
	now := time.Now().UTC()
	t.result = &Result{
		TaskID:     t.id,
		Name:       t.name,
		State:      model.TaskStateCancelled,
		Cancelled:  true,
		FinishedAt: now,
	}
	fx.finished = append(fx.finished, t)
	for _, id := range t.dependents {
		q.evaluateLocked(q.tasks[id], fx)
	}
}

// execute runs on a worker goroutine for a task already marked RUNNING.
func (q *WorkQueue) execute(t *Task) {
	value, err := t.invoke()
	if err != nil {
		err = &TaskFailure{TaskID: t.id, Err: err}
	}

	q.mu.Lock()
	q.running--
	fx := &effects{}
	if q.transitionLocked(t, model.TaskStateCompleted, fx) {
		t.result = &Result{
			TaskID:     t.id,
			Name:       t.name,
			State:      model.TaskStateCompleted,
			Value:      value,
			Err:        err,
			Cancelled:  t.cancelled.Load(),
			StartedAt:  t.startedAt,
			FinishedAt: time.Now().UTC(),
		}
		fx.finished = append(fx.finished, t)
		for _, id := range t.dependents {
			q.evaluateLocked(q.tasks[id], fx)
		}
	}
	q.dispatchLocked(fx)
	q.mu.Unlock()

	if err != nil {
		q.logger.Warn("task failed", "task_id", t.id, "name", t.name, "error", err)
	} else {
		q.logger.Debug("task completed", "task_id", t.id, "name", t.name, "cancelled", t.IsCancelled())
	}
	// Releases the body context; the flag is left untouched.
	t.cancelCtx()
	q.apply(fx)
}

// finish fires the completion callback and releases the task's slot in
// Wait accounting.
func (q *WorkQueue) finish(t *Task) {
	q.mu.Lock()
	res := *t.result
	q.mu.Unlock()

	if t.onComplete != nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					q.logger.Error("completion callback panicked", "task_id", t.id, "panic", r)
				}
			}()
			t.onComplete(res)
		}()
	}
	close(t.done)

	q.mu.Lock()
	defer q.mu.Unlock()
	if !t.submitted {
		return
	}
	q.outstanding--
	if q.outstanding == 0 && q.idle != nil {
		close(q.idle)
		q.idle = nil
	}
}
