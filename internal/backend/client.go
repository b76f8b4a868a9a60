// Package backend is the HTTP client for the recommendation backend. Every response
// passes through a decode step that folds the backend's field-name variants into the
// engine's canonical types.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/skill-pathway/internal/logging"
)

const (
	// DefaultTimeout bounds a single backend call.
	DefaultTimeout = 15 * time.Second

	apiPrefix         = "/api"
	maxErrorBodyBytes = 1024
	maxResponseBytes  = 4 << 20
)

// Client calls the backend under baseURL + "/api".
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-call timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) {
		c.logger = logging.OrNop(l)
	}
}

// New creates a Client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid backend URL %q", baseURL)
	}
	c := &Client{
		baseURL: strings.TrimRight(parsed.String(), "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "backend")
	return c, nil
}

// do sends one JSON request and returns the raw response body of a 2xx answer.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in any) (json.RawMessage, error) {
	var body io.Reader
	if in != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(in); err != nil {
			return nil, &APICallError{Operation: op, Message: "encode request failed", Cause: err}
		}
		body = &buf
	}

	target := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, &APICallError{Operation: op, Message: "build request failed", Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed", "operation", op, "error", err)
		return nil, &APICallError{Operation: op, Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &APICallError{Operation: op, StatusCode: resp.StatusCode, Message: "read response failed", Cause: err}
	}
	c.logger.Debug("backend call",
		"operation", op, "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APICallError{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    truncateBody(raw),
		}
	}
	return raw, nil
}

func truncateBody(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > maxErrorBodyBytes {
		return s[:maxErrorBodyBytes] + "..."
	}
	return s
}
