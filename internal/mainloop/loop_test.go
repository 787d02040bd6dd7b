package mainloop

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

func startLoop(t *testing.T) *Loop {
	t.Helper()
	l := New(slog.New(slog.NewTextHandler(io.Discard, nil)), 0)
	go l.Run(context.Background())
	t.Cleanup(func() {
		l.Stop()
		<-l.Done()
	})
	return l
}

func TestLoop_RunsClosuresInPostOrder(t *testing.T) {
	l := startLoop(t)

	var got []int
	for i := 0; i < 50; i++ {
		i := i
		if !l.Post(func() { got = append(got, i) }) {
			t.Fatalf("Post(%d) rejected", i)
		}
	}
	if err := l.Do(context.Background(), func() {}); err != nil {
		t.Fatalf("Do: %v", err)
	}

	if len(got) != 50 {
		t.Fatalf("ran %d closures, want 50", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("closure %d ran at position %d", v, i)
		}
	}
}

// TestLoop_SingleThreaded posts from many goroutines and checks that no two
// closures ever overlap.
func TestLoop_SingleThreaded(t *testing.T) {
	l := startLoop(t)

	var active, overlaps int
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				l.Post(func() {
					active++
					if active > 1 {
						overlaps++
					}
					time.Sleep(10 * time.Microsecond)
					active--
				})
			}
		}()
	}
	wg.Wait()
	if err := l.Do(context.Background(), func() {}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if overlaps != 0 {
		t.Errorf("overlapping closures = %d, want 0", overlaps)
	}
}

func TestLoop_PanicDoesNotStopLoop(t *testing.T) {
	l := startLoop(t)

	l.Post(func() { panic("bad closure") })
	ran := false
	if err := l.Do(context.Background(), func() { ran = true }); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !ran {
		t.Error("loop stopped after a panicking closure")
	}
}

func TestLoop_PostAfterStop(t *testing.T) {
	l := New(slog.New(slog.NewTextHandler(io.Discard, nil)), 1)
	go l.Run(context.Background())
	l.Stop()
	<-l.Done()

	if l.Post(func() {}) {
		t.Error("Post succeeded on a stopped loop")
	}
	if err := l.Do(context.Background(), func() {}); !errors.Is(err, ErrStopped) {
		t.Errorf("Do error = %v, want ErrStopped", err)
	}
}

func TestLoop_RunReturnsContextError(t *testing.T) {
	l := New(slog.New(slog.NewTextHandler(io.Discard, nil)), 0)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestLoop_DoHonoursContext(t *testing.T) {
	l := New(slog.New(slog.NewTextHandler(io.Discard, nil)), 0)
	// Not running: the closure is queued but never executed.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Do(ctx, func() {}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Do error = %v, want DeadlineExceeded", err)
	}
}

func TestLoop_NilLogger(t *testing.T) {
	l := New(nil, 0)
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	defer func() {
		cancel()
		<-l.Done()
	}()

	if err := l.Do(context.Background(), func() { panic("logged and discarded") }); err != nil {
		t.Fatalf("Do: %v", err)
	}
}
