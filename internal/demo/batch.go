package demo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/me/concdemo/internal/opqueue"
	"github.com/me/concdemo/pkg/model"
)

// Batch is one invocation of a mode. It owns a fresh queue and the tasks
// submitted to it; nothing is shared between batches.
type Batch struct {
	id        string
	mode      Mode
	queue     *opqueue.WorkQueue
	createdAt time.Time
}

// ID returns the batch identifier.
func (b *Batch) ID() string { return b.id }

// Mode returns the mode the batch was started with.
func (b *Batch) Mode() Mode { return b.mode }

// Queue returns the batch's work queue.
func (b *Batch) Queue() *opqueue.WorkQueue { return b.queue }

// CreatedAt returns when the batch was started.
func (b *Batch) CreatedAt() time.Time { return b.createdAt }

// Wait blocks until every task of the batch is terminal and its callback
// has returned.
func (b *Batch) Wait(ctx context.Context) error {
	return b.queue.Wait(ctx)
}

// Cancel cancels every task of the batch that has not finished.
func (b *Batch) Cancel() {
	b.queue.CancelAll()
}

// Snapshot returns the serializable batch record.
func (b *Batch) Snapshot() model.Batch {
	tasks := b.queue.Snapshot()
	for i := range tasks {
		tasks[i].BatchID = b.id
	}
	summary := model.ComputeTaskSummary(tasks)
	rec := model.Batch{
		ID:            b.id,
		Mode:          string(b.mode),
		State:         model.DeriveBatchState(summary),
		MaxConcurrent: b.queue.MaxConcurrent(),
		Tasks:         tasks,
		TaskSummary:   summary,
		CreatedAt:     b.createdAt,
	}
	if rec.State.IsTerminal() {
		var last time.Time
		for _, t := range tasks {
			if t.CompletedAt != nil && t.CompletedAt.After(last) {
				last = *t.CompletedAt
			}
			// A batch cancelled while all its fetches were running still
			// reads as cancelled.
			if t.Cancelled {
				rec.State = model.BatchStateCancelled
			}
		}
		if last.IsZero() {
			last = b.createdAt
		}
		rec.CompletedAt = &last
	}
	return rec
}

func newBatchID() string {
	return "batch_" + uuid.New().String()
}
