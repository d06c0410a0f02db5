package board

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"taskboard/internal/service"
)

// Store owns the board's tasks, history and draft.
// It is safe for concurrent use; remote calls run outside the lock.
type Store struct {
	mu    sync.Mutex
	tasks []service.Task
	log   Log
	draft Draft

	remote       service.Service
	policy       Policy
	now          func() time.Time
	logger       zerolog.Logger
	pruneHistory bool
	resetRemote  bool
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		draft:  emptyDraft(),
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.policy == "" {
		s.policy = PolicyLocal
		if s.remote != nil {
			s.policy = PolicyRemote
		}
	}
	return s
}

// Policy returns the store's sync policy.
func (s *Store) Policy() Policy { return s.policy }

// Tasks returns a copy of the task list in insertion order.
func (s *Store) Tasks() []service.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]service.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// TasksByStatus returns the tasks in one column, in insertion order.
func (s *Store) TasksByStatus(status service.Status) []service.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []service.Task
	for _, t := range s.tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// Task looks up a task by ID.
func (s *Store) Task(id string) (service.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.tasks[i], true
	}
	return service.Task{}, false
}

// History returns a read-only view of the activity log. History changes
// only through the store operations.
func (s *Store) History() HistoryView { return readOnlyLog{log: &s.log} }

// Draft returns the pending input.
func (s *Store) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// SetDraft replaces the pending input.
func (s *Store) SetDraft(text string, status service.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = Draft{Text: text, Status: status}
}

// SubmitDraft adds a task from the pending input.
func (s *Store) SubmitDraft(ctx context.Context) (service.Task, error) {
	d := s.Draft()
	return s.AddTask(ctx, d.Text, d.Status)
}

// AddTask creates a task in the given column.
// Blank text returns ErrEmptyText and leaves the board untouched. On local
// success the draft is cleared; a failed mirror is reported as *SyncError.
func (s *Store) AddTask(ctx context.Context, text string, status service.Status) (service.Task, error) {
	if strings.TrimSpace(text) == "" {
		return service.Task{}, ErrEmptyText
	}
	if !status.Valid() {
		return service.Task{}, fmt.Errorf("%w: %s", service.ErrInvalidStatus, status)
	}

	s.mu.Lock()
	now := s.now()
	task := service.Task{ID: s.nextIDLocked(now), Text: text, Status: status}
	s.tasks = append(s.tasks, task)
	entry := service.NewHistoryEntry(addedAction(task), now)
	s.log.Append(entry)
	s.draft = emptyDraft()
	s.mu.Unlock()

	s.logger.Debug().Str("task_id", task.ID).Str("status", string(status)).Msg("task added")

	err := s.mirror(ctx, "create_task", entry, true, func(ctx context.Context) error {
		return s.remote.CreateTask(ctx, task)
	})
	return task, err
}

// DeleteTask removes a task. An unknown ID leaves the task list unchanged
// and records a generic entry, unless history pruning is enabled, in which
// case it is a no-op.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	now := s.now()
	i := s.indexLocked(id)
	if i < 0 && s.pruneHistory {
		s.mu.Unlock()
		return nil
	}

	var entry service.HistoryEntry
	if i < 0 {
		entry = service.NewHistoryEntry(deletedUnknownAction(id), now)
	} else {
		task := s.tasks[i]
		s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
		if s.pruneHistory {
			needle := quoted(task.Text)
			removed := s.log.RemoveMatching(func(e service.HistoryEntry) bool {
				return strings.Contains(e.Action, needle)
			})
			s.logger.Debug().Str("task_id", id).Int("removed", removed).Msg("pruned history")
		}
		entry = service.NewHistoryEntry(deletedAction(task), now)
	}
	s.log.Append(entry)
	s.mu.Unlock()

	remoteEntry := &entry
	if recorder, ok := s.remote.(service.DeletionRecorder); ok && recorder.RecordsDeletions() {
		remoteEntry = nil
	}
	return s.mirrorWith(ctx, "delete_task", remoteEntry, !s.pruneHistory, func(ctx context.Context) error {
		if err := s.remote.DeleteTask(ctx, id); err != nil && !errors.Is(err, service.ErrNotFound) {
			return err
		}
		return nil
	})
}

// MoveTask changes a task's column. Unknown IDs and moves to the current
// status are no-ops.
func (s *Store) MoveTask(ctx context.Context, id string, status service.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %s", service.ErrInvalidStatus, status)
	}

	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 || s.tasks[i].Status == status {
		s.mu.Unlock()
		return nil
	}
	from := s.tasks[i].Status
	s.tasks[i].Status = status
	entry := service.NewHistoryEntry(movedAction(s.tasks[i], from), s.now())
	s.log.Append(entry)
	s.mu.Unlock()

	return s.mirror(ctx, "update_task_status", entry, true, func(ctx context.Context) error {
		return s.remote.UpdateTaskStatus(ctx, id, status)
	})
}

// Reset clears tasks, history and the draft. The remote is cleared only
// when the store was built WithRemoteReset(true).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.tasks = nil
	s.log.Clear()
	s.draft = emptyDraft()
	s.mu.Unlock()

	if s.remote == nil || !s.resetRemote {
		return nil
	}
	if err := s.remote.ResetAll(ctx); err != nil {
		return s.syncFailed("reset_all", err)
	}
	return nil
}

// RefreshFromRemote replaces local tasks and history with the remote's.
// Both lists are fetched concurrently; local state changes only when both
// fetches succeed.
func (s *Store) RefreshFromRemote(ctx context.Context) error {
	if s.remote == nil {
		return nil
	}

	var (
		tasks   []service.Task
		history []service.HistoryEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = s.remote.ListTasks(gctx)
		if err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		history, err = s.remote.ListHistory(gctx)
		if err != nil {
			return fmt.Errorf("list history: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return s.syncFailed("refresh", err)
	}

	clean := make([]service.Task, 0, len(tasks))
	seen := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if seen[t.ID] || !t.Status.Valid() {
			s.logger.Debug().Str("task_id", t.ID).Str("status", string(t.Status)).Msg("skipping remote task")
			continue
		}
		seen[t.ID] = true
		clean = append(clean, t)
	}

	s.mu.Lock()
	s.tasks = clean
	s.log.Replace(history)
	s.mu.Unlock()

	s.logger.Debug().Int("tasks", len(clean)).Int("history", len(history)).Msg("refreshed from remote")
	return nil
}

// mirror issues call, then records entry remotely, then refreshes under
// PolicyRemote when refresh is set. The chain stops at the first failure.
func (s *Store) mirror(ctx context.Context, op string, entry service.HistoryEntry, refresh bool, call func(context.Context) error) error {
	return s.mirrorWith(ctx, op, &entry, refresh, call)
}

// mirrorWith is mirror with an optional history write: a nil entry skips it.
func (s *Store) mirrorWith(ctx context.Context, op string, entry *service.HistoryEntry, refresh bool, call func(context.Context) error) error {
	if s.remote == nil {
		return nil
	}
	if err := call(ctx); err != nil {
		return s.syncFailed(op, err)
	}
	if entry != nil {
		if err := s.remote.CreateHistoryEntry(ctx, *entry); err != nil {
			return s.syncFailed("create_history_entry", err)
		}
	}
	if refresh && s.policy == PolicyRemote {
		return s.RefreshFromRemote(ctx)
	}
	return nil
}

func (s *Store) syncFailed(op string, err error) error {
	s.logger.Warn().Err(err).Str("op", op).Msg("remote sync failed")
	return &SyncError{Op: op, Err: err}
}

// nextIDLocked returns "task-<unix millis>", bumping the millis until the
// ID is unused.
func (s *Store) nextIDLocked(now time.Time) string {
	ms := now.UnixMilli()
	for {
		id := fmt.Sprintf("task-%d", ms)
		if s.indexLocked(id) < 0 {
			return id
		}
		ms++
	}
}

func (s *Store) indexLocked(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
