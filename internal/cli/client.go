package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/me/concdemo/internal/logging"
	"github.com/me/concdemo/pkg/model"
)

// Client talks to a running "concdemo serve".
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewClient returns a Client for the server at baseURL.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Logger:     logging.OrDiscard(logger),
	}
}

type apiResponse struct {
	Status     string            `json:"status"`
	RequestID  string            `json:"request_id"`
	Data       json.RawMessage   `json:"data"`
	Pagination *model.Pagination `json:"pagination"`
	Error      *model.APIError   `json:"error"`
}

// call sends in as the JSON body (when non-nil) and decodes the envelope's
// data into out (when non-nil). An error envelope is returned as its
// *model.APIError.
func (c *Client) call(ctx context.Context, method, path string, in, out any) (*apiResponse, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", method, path, err)
	}
	c.Logger.Debug("api call", "method", method, "path", path, "status", resp.StatusCode,
		"duration", time.Since(start).String())

	var env apiResponse
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%s %s: unexpected response (HTTP %d): %s", method, path, resp.StatusCode, bytes.TrimSpace(raw))
	}
	if env.Error != nil {
		return &env, env.Error
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &env, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return &env, nil
}

// Get fetches path into out.
func (c *Client) Get(ctx context.Context, path string, out any) (*apiResponse, error) {
	return c.call(ctx, http.MethodGet, path, nil, out)
}

// Post sends in to path and decodes the reply into out.
func (c *Client) Post(ctx context.Context, path string, in, out any) (*apiResponse, error) {
	return c.call(ctx, http.MethodPost, path, in, out)
}

// Put sends in to path and decodes the reply into out.
func (c *Client) Put(ctx context.Context, path string, in, out any) (*apiResponse, error) {
	return c.call(ctx, http.MethodPut, path, in, out)
}
