package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is the column a task lives in.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists every valid status in board column order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusCompleted}

// TimestampLayout is the format used for history timestamps.
const TimestampLayout = "3:04:05 PM"

var (
	// ErrInvalidStatus is returned when a string does not name a status.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrMissingTimestamp is returned when a history entry has no timestamp.
	ErrMissingTimestamp = errors.New("history entry missing timestamp")
)

// ParseStatus parses a status name (case-insensitive, trimmed).
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %s", ErrInvalidStatus, s)
	}
	return st, nil
}

// Valid reports whether s is one of the board statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// Label returns the column heading for s.
func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// Task represents a single card on the board.
type Task struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Status Status `json:"status"`
}

// HistoryEntry records a state-changing action.
type HistoryEntry struct {
	Action    string `json:"action"`
	Timestamp string `json:"timestamp"`
}

// NewHistoryEntry builds an entry stamped with t.
func NewHistoryEntry(action string, t time.Time) HistoryEntry {
	return HistoryEntry{Action: action, Timestamp: t.Format(TimestampLayout)}
}

// String renders the entry the way the history view shows it.
func (e HistoryEntry) String() string {
	return e.Action + " at " + e.Timestamp
}

// Validate checks the entry carries both an action and a timestamp.
func (e HistoryEntry) Validate() error {
	if strings.TrimSpace(e.Action) == "" {
		return errors.New("history entry missing action")
	}
	if strings.TrimSpace(e.Timestamp) == "" {
		return ErrMissingTimestamp
	}
	return nil
}

// UnmarshalJSON accepts the structured object form as well as the legacy
// plain string form "<action> at <timestamp>".
func (e *HistoryEntry) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		idx := strings.LastIndex(plain, " at ")
		if idx < 0 {
			return fmt.Errorf("%w: %q", ErrMissingTimestamp, plain)
		}
		*e = HistoryEntry{Action: plain[:idx], Timestamp: plain[idx+len(" at "):]}
		return e.Validate()
	}

	type raw HistoryEntry
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*e = HistoryEntry(r)
	return e.Validate()
}
