// Package fetcher loads image bytes from remote or local sources.
package fetcher

import (
	"context"
	"fmt"
	"time"
)

// Image is the raw content of a fetched image.
type Image struct {
	Source      string
	Data        []byte
	ContentType string
	FetchedAt   time.Time
}

// Size returns the image size in bytes.
func (img *Image) Size() int {
	if img == nil {
		return 0
	}
	return len(img.Data)
}

// Fetcher retrieves an image. Implementations block and must be called from
// a worker goroutine, never from the main loop.
type Fetcher interface {
	Fetch(ctx context.Context, source string) (*Image, error)
}

// Func adapts a function to the Fetcher interface.
type Func func(ctx context.Context, source string) (*Image, error)

// Fetch calls f(ctx, source).
func (f Func) Fetch(ctx context.Context, source string) (*Image, error) {
	return f(ctx, source)
}

// FetchError describes a failed fetch.
type FetchError struct {
	Source     string
	StatusCode int // HTTP status, 0 when not applicable
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.Source, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
