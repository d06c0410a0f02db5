// Package rest implements the service.Service interface against the board's
// JSON-over-HTTP backend.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"taskboard/internal/service"
)

const (
	// DefaultBaseURL is where the backend listens by default.
	DefaultBaseURL = "http://127.0.0.1:5050"

	// APITimeout is the default timeout for a single call.
	APITimeout = 5 * time.Second

	// maxErrorBody caps how much of an error response is read.
	maxErrorBody = 4 << 10
)

// Client implements service.Service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  zerolog.Logger
}

var (
	_ service.Service          = (*Client)(nil)
	_ service.DeletionRecorder = (*Client)(nil)
)

// New creates a REST client for baseURL. A zero timeout uses APITimeout.
func New(baseURL string, timeout time.Duration, logger zerolog.Logger) (*Client, error) {
	return NewWithHTTPClient(baseURL, timeout, http.DefaultClient, logger)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, timeout time.Duration, httpClient *http.Client, logger zerolog.Logger) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url: %q", baseURL)
	}
	if timeout <= 0 {
		timeout = APITimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// CreateTask posts a new task.
func (c *Client) CreateTask(ctx context.Context, task service.Task) error {
	return c.do(ctx, http.MethodPost, "/tasks", task, nil)
}

// DeleteTask deletes a task by ID.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil)
}

// RecordsDeletions reports true: the backend writes its own
// `Task "<text>" was deleted` history row when it soft-deletes a task.
func (c *Client) RecordsDeletions() bool { return true }

// UpdateTaskStatus puts the new status of a task.
func (c *Client) UpdateTaskStatus(ctx context.Context, id string, status service.Status) error {
	body := struct {
		Status service.Status `json:"status"`
	}{Status: status}
	return c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), body, nil)
}

// CreateHistoryEntry posts a history entry.
func (c *Client) CreateHistoryEntry(ctx context.Context, entry service.HistoryEntry) error {
	return c.do(ctx, http.MethodPost, "/history", entry, nil)
}

// ListTasks returns live tasks. Rows the backend soft-deleted (or that carry
// any other unknown status) are skipped.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	var all []service.Task
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &all); err != nil {
		return nil, err
	}

	result := make([]service.Task, 0, len(all))
	for _, t := range all {
		if !t.Status.Valid() {
			c.logger.Debug().Str("task_id", t.ID).Str("status", string(t.Status)).Msg("skipping task")
			continue
		}
		result = append(result, t)
	}
	return result, nil
}

// ListHistory returns all history entries in backend order.
func (c *Client) ListHistory(ctx context.Context) ([]service.HistoryEntry, error) {
	var entries []service.HistoryEntry
	if err := c.do(ctx, http.MethodGet, "/history", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ResetAll clears every task and history entry on the backend.
func (c *Client) ResetAll(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/reset", nil, nil)
}

// do sends one request. in is JSON-encoded when non-nil; the response body is
// decoded into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug().Str("method", method).Str("path", path).Msg("request")

	resp, err := c.http.Do(req)
	if err != nil {
		return wrapError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// StatusError is returned for non-2xx responses that have no sentinel.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d", e.Code)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Code, e.Message)
}

// statusError maps a failed response onto the service sentinels.
func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := strings.TrimSpace(string(data))
	if json.Unmarshal(data, &payload) == nil {
		msg = payload.Message
		if payload.Error != "" {
			msg = payload.Error
		}
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", service.ErrNotFound, msg)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", service.ErrConflict, msg)
	default:
		return &StatusError{Code: resp.StatusCode, Message: msg}
	}
}

// wrapError turns transport failures into short messages.
func wrapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}
	return err
}
