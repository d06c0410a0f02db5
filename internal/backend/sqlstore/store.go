package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"taskboard/internal/service"
)

// Store implements service.Service on a SQL database.
type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  zerolog.Logger
}

var _ service.Service = (*Store)(nil)

// Dialect returns the dialect the store was opened with.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// CreateTask inserts a task. A duplicate ID returns service.ErrConflict.
func (s *Store) CreateTask(ctx context.Context, task service.Task) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, text, status) VALUES (?, ?, ?)`,
		task.ID, task.Text, string(task.Status))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: task %s already exists", service.ErrConflict, task.ID)
		}
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// DeleteTask removes a task by ID.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: task %s", service.ErrNotFound, id)
	}
	return nil
}

// UpdateTaskStatus sets the status of a task.
func (s *Store) UpdateTaskStatus(ctx context.Context, id string, status service.Status) error {
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if n > 0 {
		return nil
	}

	// MySQL counts changed rows, not matched rows, so an unchanged status
	// also reports zero.
	exists, err := s.taskExists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: task %s", service.ErrNotFound, id)
	}
	return nil
}

func (s *Store) taskExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM tasks WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up task: %w", err)
	}
	return true, nil
}

// CreateHistoryEntry appends a history entry.
func (s *Store) CreateHistoryEntry(ctx context.Context, entry service.HistoryEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO history (action, ts) VALUES (?, ?)`, entry.Action, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert history: %w", err)
	}
	return nil
}

// ListTasks returns tasks in insertion order. Rows with an unknown status
// are skipped.
func (s *Store) ListTasks(ctx context.Context) ([]service.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, text, status FROM tasks ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []service.Task
	for rows.Next() {
		var t service.Task
		var status string
		if err := rows.Scan(&t.ID, &t.Text, &status); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		t.Status = service.Status(status)
		if !t.Status.Valid() {
			s.logger.Debug().Str("task_id", t.ID).Str("status", status).Msg("skipping task")
			continue
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// ListHistory returns history entries oldest first.
func (s *Store) ListHistory(ctx context.Context) ([]service.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT action, ts FROM history ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []service.HistoryEntry
	for rows.Next() {
		var e service.HistoryEntry
		if err := rows.Scan(&e.Action, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return entries, nil
}

// ResetAll deletes every task and history entry in one transaction.
func (s *Store) ResetAll(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM history`); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
			return fmt.Errorf("failed to clear tasks: %w", err)
		}
		return nil
	})
}
