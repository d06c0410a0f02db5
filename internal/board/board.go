// Package board holds the task board state: the task list, the activity
// history and the pending input draft. Every mutation goes through Store,
// which can mirror it to a remote service.Service.
package board

import (
	"errors"
	"fmt"
	"strings"

	"taskboard/internal/service"
)

// ErrEmptyText is returned when a task is added with blank text.
var ErrEmptyText = errors.New("task text required")

// Policy decides which side is authoritative when a remote is configured.
type Policy string

const (
	// PolicyLocal keeps local state authoritative. Mutations are mirrored to
	// the remote but never reloaded from it.
	PolicyLocal Policy = "local"

	// PolicyRemote treats the remote as the source of truth. Every mirrored
	// mutation is followed by a full refresh.
	PolicyRemote Policy = "remote"
)

// ParsePolicy parses a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyLocal, PolicyRemote:
		return p, nil
	default:
		return "", fmt.Errorf("invalid sync policy: %q", s)
	}
}

// SyncError reports a remote call that failed after local state was
// already updated. Local state is never rolled back.
type SyncError struct {
	Op  string
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("remote sync failed: %s: %v", e.Op, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// Draft is the pending input: the text and status of the next task.
type Draft struct {
	Text   string
	Status service.Status
}

func emptyDraft() Draft {
	return Draft{Status: service.StatusTodo}
}

// quoted wraps text in double quotes without escaping, matching how
// actions reference task text.
func quoted(text string) string {
	return `"` + text + `"`
}

func addedAction(t service.Task) string {
	return fmt.Sprintf("Task %s added to %s", quoted(t.Text), t.Status)
}

func movedAction(t service.Task, from service.Status) string {
	return fmt.Sprintf("Task %s moved from %s to %s", quoted(t.Text), from, t.Status)
}

func deletedAction(t service.Task) string {
	return fmt.Sprintf("Task %s was deleted from %s", quoted(t.Text), t.Status)
}

func deletedUnknownAction(id string) string {
	return fmt.Sprintf("Task %s was deleted", id)
}
