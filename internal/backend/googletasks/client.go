// Package googletasks implements the service.Service interface using Google Tasks API.
//
// The board lives in one task list and its history in another. Board
// metadata (the board task ID and column) is kept as YAML in each Google
// task's notes so the lists stay readable in Google's own apps.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"taskboard/internal/config"
	"taskboard/internal/service"
)

const (
	// PageSize is the number of tasks per page.
	PageSize = 100

	// APITimeout is the timeout for a single board operation.
	APITimeout = 5 * time.Second

	// ResetTimeout bounds ResetAll, which deletes task by task.
	ResetTimeout = 30 * time.Second

	// TasksScope is the OAuth scope for Google Tasks.
	TasksScope = "https://www.googleapis.com/auth/tasks"

	// resetWorkers caps concurrent deletes during ResetAll.
	resetWorkers = 4
)

// errTokenRejected is returned when the stored token is no longer accepted.
var errTokenRejected = fmt.Errorf("%w: token expired or revoked (run: taskboard login)", service.ErrAuth)

// Lists names the two Google task lists backing the board.
type Lists struct {
	Board   string
	History string
}

// Client implements service.Service using Google Tasks API.
type Client struct {
	svc    *tasks.Service
	lists  Lists
	logger zerolog.Logger

	mu        sync.Mutex
	boardID   string
	historyID string
	lastSeq   int64
}

var _ service.Service = (*Client)(nil)

// New creates a new Google Tasks client.
// Requires oauth_client.json and token.json to exist.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Client, error) {
	// Load OAuth client config
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read oauth_client.json: %w", service.ErrAuth, err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, TasksScope)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid oauth_client.json: %w", service.ErrAuth, err)
	}

	// Load token
	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read token.json: %w", service.ErrAuth, err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("%w: invalid token.json: %w", service.ErrAuth, err)
	}

	// Token source refreshes automatically
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, &token))

	lists := Lists{Board: cfg.GoogleTasks.BoardList, History: cfg.GoogleTasks.HistoryList}
	return NewWithHTTPClient(ctx, httpClient, lists, logger)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, lists Lists, logger zerolog.Logger, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &Client{svc: svc, lists: lists, logger: logger}, nil
}

// CreateTask inserts a board task. A task with the same board ID returns
// service.ErrConflict.
func (c *Client) CreateTask(ctx context.Context, task service.Task) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	listID, err := c.boardList(ctx)
	if err != nil {
		return err
	}
	existing, err := c.findTask(ctx, listID, task.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: task %s already exists", service.ErrConflict, task.ID)
	}

	notes, err := encodeNotes(task.ID, task.Status)
	if err != nil {
		return err
	}
	_, err = c.svc.Tasks.Insert(listID, &tasks.Task{
		Title:  task.Text,
		Notes:  notes,
		Status: googleStatus(task.Status),
	}).Context(ctx).Do()
	return wrapError(err)
}

// DeleteTask deletes a board task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	listID, err := c.boardList(ctx)
	if err != nil {
		return err
	}
	gt, err := c.findTask(ctx, listID, id)
	if err != nil {
		return err
	}
	if gt == nil {
		return fmt.Errorf("%w: task %s", service.ErrNotFound, id)
	}
	return wrapError(c.svc.Tasks.Delete(listID, gt.Id).Context(ctx).Do())
}

// UpdateTaskStatus moves a board task to another column.
func (c *Client) UpdateTaskStatus(ctx context.Context, id string, status service.Status) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	listID, err := c.boardList(ctx)
	if err != nil {
		return err
	}
	gt, err := c.findTask(ctx, listID, id)
	if err != nil {
		return err
	}
	if gt == nil {
		return fmt.Errorf("%w: task %s", service.ErrNotFound, id)
	}

	notes, err := encodeNotes(id, status)
	if err != nil {
		return err
	}
	patch := &tasks.Task{Notes: notes, Status: googleStatus(status)}
	if status != service.StatusCompleted {
		patch.NullFields = []string{"Completed"}
	}
	_, err = c.svc.Tasks.Patch(listID, gt.Id, patch).Context(ctx).Do()
	return wrapError(err)
}

// CreateHistoryEntry appends an entry to the history list.
func (c *Client) CreateHistoryEntry(ctx context.Context, entry service.HistoryEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	listID, err := c.historyList(ctx)
	if err != nil {
		return err
	}
	notes, err := encodeHistoryNotes(c.nextSeq(), entry.Timestamp)
	if err != nil {
		return err
	}
	_, err = c.svc.Tasks.Insert(listID, &tasks.Task{
		Title: entry.Action,
		Notes: notes,
	}).Context(ctx).Do()
	return wrapError(err)
}

// nextSeq returns the current time in unix nanoseconds, strictly greater
// than any value it returned before.
func (c *Client) nextSeq() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	seq := time.Now().UnixNano()
	if seq <= c.lastSeq {
		seq = c.lastSeq + 1
	}
	c.lastSeq = seq
	return seq
}

// ListTasks returns the board tasks ordered by board ID. Google tasks
// without board metadata are ignored.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	listID, err := c.boardList(ctx)
	if err != nil {
		return nil, err
	}
	items, err := c.listAll(ctx, listID)
	if err != nil {
		return nil, err
	}

	result := make([]service.Task, 0, len(items))
	for _, gt := range items {
		task, ok := boardTask(gt)
		if !ok {
			c.logger.Debug().Str("google_id", gt.Id).Msg("skipping task without board metadata")
			continue
		}
		result = append(result, task)
	}
	sortTasks(result)
	return result, nil
}

// ListHistory returns history entries oldest first.
func (c *Client) ListHistory(ctx context.Context) ([]service.HistoryEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	listID, err := c.historyList(ctx)
	if err != nil {
		return nil, err
	}
	items, err := c.listAll(ctx, listID)
	if err != nil {
		return nil, err
	}
	return historyEntries(items), nil
}

// ResetAll deletes every task in both lists. The lists themselves are kept.
func (c *Client) ResetAll(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, ResetTimeout)
	defer cancel()

	boardID, err := c.boardList(ctx)
	if err != nil {
		return err
	}
	historyID, err := c.historyList(ctx)
	if err != nil {
		return err
	}

	pending := make(map[string][]*tasks.Task, 2)
	for _, listID := range []string{boardID, historyID} {
		items, err := c.listAll(ctx, listID)
		if err != nil {
			return err
		}
		pending[listID] = items
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resetWorkers)
	for listID, items := range pending {
		for _, gt := range items {
			g.Go(func() error {
				return wrapError(c.svc.Tasks.Delete(listID, gt.Id).Context(gctx).Do())
			})
		}
	}
	return g.Wait()
}

func (c *Client) boardList(ctx context.Context) (string, error) {
	return c.ensureList(ctx, c.lists.Board, &c.boardID)
}

func (c *Client) historyList(ctx context.Context) (string, error) {
	return c.ensureList(ctx, c.lists.History, &c.historyID)
}

// ensureList resolves a list by title (case-insensitive, trimmed), creating
// it when missing. The ID is cached in *cached.
func (c *Client) ensureList(ctx context.Context, title string, cached *string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if *cached != "" {
		return *cached, nil
	}

	want := strings.ToLower(strings.TrimSpace(title))
	var matches []string
	err := c.svc.Tasklists.List().MaxResults(100).Pages(ctx, func(resp *tasks.TaskLists) error {
		for _, list := range resp.Items {
			if strings.ToLower(strings.TrimSpace(list.Title)) == want {
				matches = append(matches, list.Id)
			}
		}
		return nil
	})
	if err != nil {
		return "", wrapError(err)
	}

	switch len(matches) {
	case 0:
		created, err := c.svc.Tasklists.Insert(&tasks.TaskList{Title: title}).Context(ctx).Do()
		if err != nil {
			return "", wrapError(err)
		}
		c.logger.Info().Str("list", title).Msg("created task list")
		*cached = created.Id
	case 1:
		*cached = matches[0]
	default:
		return "", fmt.Errorf("ambiguous list name: %s", title)
	}
	return *cached, nil
}

// listAll returns every task in a list, completed and hidden ones included.
func (c *Client) listAll(ctx context.Context, listID string) ([]*tasks.Task, error) {
	var items []*tasks.Task
	err := c.svc.Tasks.List(listID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			items = append(items, resp.Items...)
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}
	return items, nil
}

// findTask returns the Google task carrying board ID id, or nil.
func (c *Client) findTask(ctx context.Context, listID, id string) (*tasks.Task, error) {
	items, err := c.listAll(ctx, listID)
	if err != nil {
		return nil, err
	}
	for _, gt := range items {
		if meta, ok := decodeNotes(gt.Notes); ok && meta.ID == id {
			return gt, nil
		}
	}
	return nil, nil
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return errTokenRejected
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", service.ErrNotFound, apiErr.Message)
		}
	}

	return err
}
