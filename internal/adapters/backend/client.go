package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"llavedesol/internal/adapters/http/perf"
)

// DefaultTimeout bounds every backend call.
const DefaultTimeout = 10 * time.Second

// Config holds the backend connection settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the organisation's REST backend.
// It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	collector  *perf.Collector
}

// NewClient creates a client for cfg.BaseURL.
// PRE: cfg.BaseURL is an absolute URL, e.g. "http://127.0.0.1:8000"
// POST: collector may be nil
func NewClient(cfg Config, collector *perf.Collector) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		collector:  collector,
	}
}

// Caller issues requests on behalf of one user, or anonymously.
type Caller struct {
	c      *Client
	access string
}

// Anonymous returns a caller without credentials, for the public endpoints.
func (c *Client) Anonymous() *Caller {
	return &Caller{c: c}
}

// As returns a caller that sends access as its bearer token.
func (c *Client) As(access string) *Caller {
	return &Caller{c: c, access: access}
}

// ErrUnavailable wraps transport failures and undecodable responses.
var ErrUnavailable = errors.New("backend unavailable")

// APIError is a non-2xx response from the backend.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend %s %s: status %d", e.Method, e.Path, e.Status)
}

// Message extracts a human-readable reason from a DRF error body:
// the "detail" or "error" field, otherwise the first field error.
func (e *APIError) Message() string {
	var body map[string]any
	if err := json.Unmarshal(e.Body, &body); err != nil {
		return ""
	}
	for _, key := range []string{"detail", "error"} {
		if d, ok := body[key].(string); ok {
			return d
		}
	}
	keys := make([]string, 0, len(body))
	for k := range body {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := body[k].(type) {
		case string:
			return k + ": " + v
		case []any:
			if len(v) > 0 {
				if s, ok := v[0].(string); ok {
					return k + ": " + s
				}
			}
		}
	}
	return ""
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsBackendError reports whether err came from talking to the backend
// rather than from local validation.
func IsBackendError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) || errors.Is(err, ErrUnavailable) || errors.Is(err, ErrNoPreference)
}

// request describes one backend call. label is the path template used for metrics.
type request struct {
	method      string
	path        string
	label       string
	body        io.Reader
	contentType string
}

func jsonRequest(method, path, label string, payload any) (request, error) {
	r := request{method: method, path: path, label: label}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return r, fmt.Errorf("marshal request: %w", err)
		}
		r.body = bytes.NewReader(data)
		r.contentType = "application/json"
	}
	return r, nil
}

// send performs r and returns the response for a 2xx status.
// POST: the caller must close the body of a non-nil response
func (cl *Caller) send(ctx context.Context, r request) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, r.method, cl.c.baseURL+r.path, r.body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if cl.access != "" {
		req.Header.Set("Authorization", "Bearer "+cl.access)
	}

	start := time.Now()
	resp, err := cl.c.httpClient.Do(req)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	cl.c.observe(r, status, start, err)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrUnavailable, r.method, r.label, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, &APIError{Method: r.method, Path: r.path, Status: resp.StatusCode, Body: body}
	}
	return resp, nil
}

// do performs r and decodes a JSON response into out (skipped when out is nil).
func (cl *Caller) do(ctx context.Context, r request, out any) error {
	resp, err := cl.send(ctx, r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %w", ErrUnavailable, r.method, r.label, err)
	}
	return nil
}

func (c *Client) observe(r request, status int, start time.Time, err error) {
	elapsed := time.Since(start)
	durationMs := float64(elapsed.Microseconds()) / 1000.0
	label := r.method + " " + r.label

	if err != nil {
		slog.Warn("backend_call", "method", r.method, "path", r.label, "error", err, "duration_ms", durationMs)
		status = http.StatusBadGateway
	} else {
		slog.Debug("backend_call", "method", r.method, "path", r.label, "status", status, "duration_ms", durationMs)
	}

	c.collector.Record(perf.Entry{
		Kind:       perf.KindBackend,
		Label:      label,
		StatusCode: status,
		DurationMs: durationMs,
		Timestamp:  start,
	})
}
