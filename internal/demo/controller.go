package demo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/me/concdemo/internal/fetcher"
	"github.com/me/concdemo/internal/logging"
	"github.com/me/concdemo/internal/opqueue"
	"github.com/me/concdemo/pkg/model"
)

var (
	// ErrBatchNotFound is returned for an unknown batch id.
	ErrBatchNotFound = errors.New("batch not found")
	// ErrNoBatch is returned by CancelCurrent before any batch was started.
	ErrNoBatch = errors.New("no batch started")
)

// Config holds Controller configuration.
type Config struct {
	// Images are the sources fetched by every batch, one per gallery slot.
	Images []string

	// MaxConcurrent is the queue limit for the blocks and operations modes.
	// 0 means unbounded. The concurrent and serial modes ignore it.
	MaxConcurrent int

	// Priorities sets the admission priority of each operations-mode task,
	// indexed like Images. Missing entries are normal.
	Priorities []model.Priority
}

// Option configures optional Controller behaviour.
type Option func(*Controller)

// WithTaskObserver forwards every task state transition of every batch.
func WithTaskObserver(fn func(batchID string, ev opqueue.Event)) Option {
	return func(c *Controller) {
		c.observers = append(c.observers, fn)
	}
}

// Controller starts batches and routes their results to the gallery.
type Controller struct {
	cfg       Config
	fetcher   fetcher.Fetcher
	gallery   *Gallery
	logger    *slog.Logger
	base      *slog.Logger // handed to batch queues
	observers []func(string, opqueue.Event)

	mu      sync.Mutex
	batches map[string]*Batch
	order   []*Batch
}

// NewController creates a Controller. The gallery gets one slot per image.
func NewController(cfg Config, f fetcher.Fetcher, sink Sink, logger *slog.Logger, opts ...Option) *Controller {
	if cfg.MaxConcurrent < 0 {
		cfg.MaxConcurrent = 0
	}
	logger = logging.OrDiscard(logger)
	c := &Controller{
		cfg:     cfg,
		fetcher: f,
		gallery: NewGallery(sink, len(cfg.Images)),
		logger:  logger.With("component", "demo"),
		base:    logger,
		batches: make(map[string]*Batch),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Gallery returns the display state the batches write to.
func (c *Controller) Gallery() *Gallery { return c.gallery }

// Start creates a fresh queue for mode and submits one fetch per image.
func (c *Controller) Start(mode Mode) (*Batch, error) {
	var qcfg opqueue.Config
	switch mode {
	case ModeConcurrent:
		qcfg = opqueue.DefaultConfig()
	case ModeSerial:
		qcfg = opqueue.SerialConfig("")
	case ModeBlocks, ModeOperations:
		qcfg = opqueue.Config{MaxConcurrent: c.cfg.MaxConcurrent}
	default:
		return nil, fmt.Errorf("start: unknown mode %q", mode)
	}
	if len(c.cfg.Images) == 0 {
		return nil, fmt.Errorf("start %s: no image sources configured", mode)
	}

	b := &Batch{
		id:        newBatchID(),
		mode:      mode,
		createdAt: time.Now().UTC(),
	}
	qcfg.Name = b.id
	b.queue = opqueue.New(qcfg, c.base, opqueue.WithObserver(c.observe(b.id)))

	var err error
	switch mode {
	case ModeConcurrent, ModeSerial, ModeBlocks:
		err = c.addBlocks(b)
	case ModeOperations:
		err = c.addOperations(b)
	}
	if err != nil {
		b.queue.CancelAll()
		return nil, fmt.Errorf("start %s: %w", mode, err)
	}

	c.mu.Lock()
	c.batches[b.id] = b
	c.order = append(c.order, b)
	c.mu.Unlock()

	c.logger.Info("batch started", "batch_id", b.id, "mode", mode, "images", len(c.cfg.Images), "max_concurrent", qcfg.MaxConcurrent)
	return b, nil
}

// addBlocks submits each fetch as a plain closure.
func (c *Controller) addBlocks(b *Batch) error {
	for i, src := range c.cfg.Images {
		if _, err := b.queue.AddTask(fmt.Sprintf("image %d", i+1), c.fetchInto(b.id, i, src)); err != nil {
			return err
		}
	}
	return nil
}

// addOperations builds one task per image with a completion callback, chains
// operation 3 after 2 and 2 after 1, then submits them together.
func (c *Controller) addOperations(b *Batch) error {
	ops := make([]*opqueue.Task, len(c.cfg.Images))
	for i, src := range c.cfg.Images {
		n := i + 1
		ops[i] = b.queue.NewTask(fmt.Sprintf("operation %d", n), c.fetchInto(b.id, i, src),
			opqueue.WithPriority(c.priority(i)),
			opqueue.WithCompletion(func(res opqueue.Result) {
				c.logger.Info(fmt.Sprintf("operation %d completed, cancelled: %t", n, res.Cancelled),
					"batch_id", b.id, "task_id", res.TaskID, "state", res.State)
			}))
	}
	for i := 1; i < len(ops) && i < 3; i++ {
		if err := ops[i].AddDependency(ops[i-1]); err != nil {
			return err
		}
	}
	return b.queue.Submit(ops...)
}

func (c *Controller) priority(i int) model.Priority {
	if i < len(c.cfg.Priorities) {
		return c.cfg.Priorities[i]
	}
	return model.PriorityNormal
}

// fetchInto returns a body that fetches src and shows it in slot.
func (c *Controller) fetchInto(batchID string, slot int, src string) opqueue.Body {
	return func(ctx context.Context) (any, error) {
		img, err := c.fetcher.Fetch(ctx, src)
		if err != nil {
			return nil, err
		}
		if err := c.gallery.Show(slot, img, batchID); err != nil {
			return nil, err
		}
		return img, nil
	}
}

func (c *Controller) observe(batchID string) func(opqueue.Event) {
	return func(ev opqueue.Event) {
		c.logger.Debug("task state", "batch_id", batchID, "task_id", ev.TaskID, "task", ev.Name, "from", ev.From, "to", ev.To)
		for _, fn := range c.observers {
			fn(batchID, ev)
		}
	}
}

// Batch looks up a batch by id.
func (c *Controller) Batch(id string) (*Batch, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.batches[id]
	return b, ok
}

// Batches returns every batch in start order.
func (c *Controller) Batches() []*Batch {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Batch, len(c.order))
	copy(out, c.order)
	return out
}

// Cancel cancels the batch with the given id.
func (c *Controller) Cancel(id string) error {
	b, ok := c.Batch(id)
	if !ok {
		return fmt.Errorf("cancel %s: %w", id, ErrBatchNotFound)
	}
	b.Cancel()
	c.logger.Info("batch cancelled", "batch_id", id)
	return nil
}

// CancelCurrent cancels the most recently started batch.
func (c *Controller) CancelCurrent() (*Batch, error) {
	c.mu.Lock()
	if len(c.order) == 0 {
		c.mu.Unlock()
		return nil, ErrNoBatch
	}
	b := c.order[len(c.order)-1]
	c.mu.Unlock()

	b.Cancel()
	c.logger.Info("batch cancelled", "batch_id", b.id)
	return b, nil
}

// SetSlider updates the slider label for a position in [0,1].
func (c *Controller) SetSlider(value float64) (string, error) {
	label, err := SliderLabel(value)
	if err != nil {
		return "", err
	}
	if err := c.gallery.SetLabel(label); err != nil {
		return "", err
	}
	return label, nil
}
