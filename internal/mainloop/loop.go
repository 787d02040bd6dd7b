// Package mainloop provides a single-threaded executor that stands in for
// an application's UI thread. Closures posted to a Loop run one at a time,
// in the order they were posted, on the goroutine that called Run.
package mainloop

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/me/concdemo/internal/logging"
)

// ErrStopped is returned when work is posted to a loop that has stopped.
var ErrStopped = errors.New("main loop stopped")

// DefaultBufferSize is the number of posted closures a Loop holds before
// Post blocks.
const DefaultBufferSize = 64

// Loop executes posted closures sequentially.
type Loop struct {
	logger *slog.Logger
	work   chan func()

	mu      sync.RWMutex
	stopped bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	once    sync.Once
}

// New creates a Loop. bufferSize <= 0 uses DefaultBufferSize.
func New(logger *slog.Logger, bufferSize int) *Loop {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Loop{
		logger: logging.OrDiscard(logger).With("component", "mainloop"),
		work:   make(chan func(), bufferSize),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Run executes posted closures until ctx is cancelled or Stop is called.
// Closures already queued when the loop stops are drained first.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Debug("main loop started")
	defer close(l.doneCh)

	for {
		select {
		case fn := <-l.work:
			l.exec(fn)
		case <-ctx.Done():
			l.shutdown()
			l.drain()
			l.logger.Debug("main loop stopping (context cancelled)")
			return ctx.Err()
		case <-l.stopCh:
			l.shutdown()
			l.drain()
			l.logger.Debug("main loop stopping (stop called)")
			return nil
		}
	}
}

// Post schedules fn on the loop. It returns false if the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.stopped {
		return false
	}
	select {
	case l.work <- fn:
		return true
	case <-l.stopCh:
		return false
	}
}

// Do runs fn on the loop and waits for it to return.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !l.Post(func() {
		defer close(done)
		fn()
	}) {
		return ErrStopped
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop asks Run to return. Use Done to wait for it.
func (l *Loop) Stop() {
	l.once.Do(func() { close(l.stopCh) })
}

// Done is closed when Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.doneCh
}

func (l *Loop) shutdown() {
	l.once.Do(func() { close(l.stopCh) })
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()
}

func (l *Loop) drain() {
	for {
		select {
		case fn := <-l.work:
			l.exec(fn)
		default:
			return
		}
	}
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("posted closure panicked", "panic", r)
		}
	}()
	fn()
}
