// Package service defines the backend-agnostic interface for board persistence.
package service

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a task does not exist on the backend.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a task with the same ID already exists.
	ErrConflict = errors.New("conflict")

	// ErrAuth is returned when a backend rejects or lacks credentials.
	ErrAuth = errors.New("auth error")
)

// Service defines the interface for remote board operations.
// The board store calls it to mirror mutations and to refresh its state.
// Commands never import a backend SDK directly.
type Service interface {
	// CreateTask persists a new task. Returns ErrConflict if the ID is taken.
	CreateTask(ctx context.Context, task Task) error

	// DeleteTask removes a task by ID. Returns ErrNotFound if it does not exist.
	DeleteTask(ctx context.Context, id string) error

	// UpdateTaskStatus changes the status of a task.
	// Returns ErrNotFound if it does not exist.
	UpdateTaskStatus(ctx context.Context, id string, status Status) error

	// CreateHistoryEntry appends an entry to the remote history.
	CreateHistoryEntry(ctx context.Context, entry HistoryEntry) error

	// ListTasks returns all live tasks in backend order.
	ListTasks(ctx context.Context) ([]Task, error)

	// ListHistory returns all history entries, oldest first.
	ListHistory(ctx context.Context) ([]HistoryEntry, error)

	// ResetAll removes every task and history entry.
	ResetAll(ctx context.Context) error
}

// DeletionRecorder is implemented by backends that write their own history
// entry when a task is deleted. The board store skips its CreateHistoryEntry
// call for deletes on such backends.
type DeletionRecorder interface {
	RecordsDeletions() bool
}
