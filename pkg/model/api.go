package model

import "time"

// Response wraps every body the control API returns.
type Response struct {
	Status     string      `json:"status"` // "ok" or "error"
	RequestID  string      `json:"request_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Data       any         `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Error      *APIError   `json:"error"`
}

// Pagination describes the window a list response covers.
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// Page size bounds for batch listings.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// ListOptions selects a page of batches, optionally filtered by state.
type ListOptions struct {
	Limit  int
	Offset int
	State  BatchState // empty matches every state
}

// DefaultListOptions returns the first page at the default size.
func DefaultListOptions() ListOptions {
	return ListOptions{Limit: DefaultPageLimit}
}

// Clamp pulls Limit into [1, MaxPageLimit] (non-positive means the default)
// and Offset to >= 0.
func (o *ListOptions) Clamp() {
	switch {
	case o.Limit <= 0:
		o.Limit = DefaultPageLimit
	case o.Limit > MaxPageLimit:
		o.Limit = MaxPageLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
}

// Matches reports whether a batch in state s passes the state filter.
func (o ListOptions) Matches(s BatchState) bool {
	return o.State == "" || o.State == s
}

// Page returns the bounds [start:end) of the page within n items, and its
// Pagination. The options are clamped first.
func (o ListOptions) Page(n int) (start, end int, pg *Pagination) {
	o.Clamp()
	start = min(o.Offset, n)
	end = min(start+o.Limit, n)
	return start, end, &Pagination{
		Total:   n,
		Limit:   o.Limit,
		Offset:  o.Offset,
		HasMore: end < n,
	}
}
