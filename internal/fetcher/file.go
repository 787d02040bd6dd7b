package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileFetcher reads images from the local filesystem. Relative paths are
// resolved against BaseDir.
type FileFetcher struct {
	BaseDir string
}

// NewFileFetcher creates a FileFetcher rooted at baseDir.
func NewFileFetcher(baseDir string) *FileFetcher {
	return &FileFetcher{BaseDir: baseDir}
}

// Fetch reads a file:// URL or a bare path.
func (f *FileFetcher) Fetch(ctx context.Context, source string) (*Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Source: source, Err: err}
	}
	path, err := f.resolve(source)
	if err != nil {
		return nil, &FetchError{Source: source, Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FetchError{Source: source, Err: err}
	}
	return &Image{
		Source:      source,
		Data:        data,
		ContentType: http.DetectContentType(data),
		FetchedAt:   time.Now().UTC(),
	}, nil
}

func (f *FileFetcher) resolve(source string) (string, error) {
	path := source
	if strings.HasPrefix(source, "file://") {
		u, err := url.Parse(source)
		if err != nil {
			return "", fmt.Errorf("parse file url: %w", err)
		}
		path = u.Path
		if u.Host != "" && u.Host != "localhost" {
			// file://relative/dir/img.png keeps the host as the first segment.
			path = filepath.Join(u.Host, u.Path)
		}
	}
	if path == "" {
		return "", fmt.Errorf("empty path")
	}
	if !filepath.IsAbs(path) && f.BaseDir != "" {
		path = filepath.Join(f.BaseDir, path)
	}
	return filepath.Clean(path), nil
}
