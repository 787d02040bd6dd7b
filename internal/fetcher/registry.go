package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"github.com/me/concdemo/internal/logging"
)

// Registry maps URL schemes to their Fetcher implementations. Sources
// without a scheme are treated as "file". Register every scheme before the
// first Fetch; lookups are not locked.
type Registry struct {
	fetchers map[string]Fetcher
	logger   *slog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		fetchers: make(map[string]Fetcher),
		logger:   logging.OrDiscard(logger).With("component", "fetcher-registry"),
	}
}

// NewDefaultRegistry registers the HTTP fetcher for http/https and the file
// fetcher for file and bare paths.
func NewDefaultRegistry(httpCfg HTTPConfig, baseDir string, logger *slog.Logger) *Registry {
	r := NewRegistry(logger)
	hf := NewHTTPFetcher(httpCfg)
	r.Register("http", hf)
	r.Register("https", hf)
	r.Register("file", NewFileFetcher(baseDir))
	return r
}

// Register adds a Fetcher for scheme.
func (r *Registry) Register(scheme string, f Fetcher) {
	scheme = strings.ToLower(scheme)
	r.fetchers[scheme] = f
	r.logger.Debug("fetcher registered", "scheme", scheme)
}

// Get returns the Fetcher for scheme or an error if none is registered.
func (r *Registry) Get(scheme string) (Fetcher, error) {
	f, ok := r.fetchers[strings.ToLower(scheme)]
	if !ok {
		return nil, fmt.Errorf("no fetcher registered for scheme %q", scheme)
	}
	return f, nil
}

// Schemes lists the registered schemes in sorted order.
func (r *Registry) Schemes() []string {
	out := make([]string, 0, len(r.fetchers))
	for s := range r.fetchers {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Fetch routes source to the fetcher registered for its scheme.
func (r *Registry) Fetch(ctx context.Context, source string) (*Image, error) {
	f, err := r.Get(schemeOf(source))
	if err != nil {
		return nil, &FetchError{Source: source, Err: err}
	}
	r.logger.Debug("fetch", "source", source)
	return f.Fetch(ctx, source)
}

// schemeOf returns the lower-cased URL scheme of source, or "file" for paths.
func schemeOf(source string) string {
	u, err := url.Parse(source)
	if err != nil || len(u.Scheme) <= 1 {
		// A single-letter scheme is a Windows drive letter.
		return "file"
	}
	return strings.ToLower(u.Scheme)
}
