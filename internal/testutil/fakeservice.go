// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"taskboard/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
// It records every call in order.
type FakeService struct {
	mu      sync.RWMutex
	tasks   []service.Task
	history []service.HistoryEntry
	calls   []string

	// Error injection for testing
	CreateTaskErr         error
	DeleteTaskErr         error
	UpdateTaskStatusErr   error
	CreateHistoryEntryErr error
	ListTasksErr          error
	ListHistoryErr        error
	ResetAllErr           error

	// RecordsDeletes makes DeleteTask append its own history entry, like a
	// backend that logs deletions server-side.
	RecordsDeletes bool
}

var (
	_ service.Service          = (*FakeService)(nil)
	_ service.DeletionRecorder = (*FakeService)(nil)
)

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{}
}

// AddTask seeds a task without recording a call.
func (f *FakeService) AddTask(id, text string, status service.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, service.Task{ID: id, Text: text, Status: status})
}

// AddHistory seeds a history entry without recording a call.
func (f *FakeService) AddHistory(action, timestamp string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = append(f.history, service.HistoryEntry{Action: action, Timestamp: timestamp})
}

// Tasks returns a copy of the stored tasks.
func (f *FakeService) Tasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// History returns a copy of the stored history.
func (f *FakeService) History() []service.HistoryEntry {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.HistoryEntry, len(f.history))
	copy(out, f.history)
	return out
}

// Calls returns the names of the service methods invoked so far, in order.
func (f *FakeService) Calls() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// ResetCalls forgets the recorded calls.
func (f *FakeService) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *FakeService) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, task service.Task) error {
	f.record("CreateTask")
	if f.CreateTaskErr != nil {
		return f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, t := range f.tasks {
		if t.ID == task.ID {
			return service.ErrConflict
		}
	}
	f.tasks = append(f.tasks, task)
	return nil
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	f.record("DeleteTask")
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			if f.RecordsDeletes {
				f.history = append(f.history, service.HistoryEntry{
					Action:    fmt.Sprintf("Task %q was deleted", t.Text),
					Timestamp: "12:00:00 PM",
				})
			}
			return nil
		}
	}
	return service.ErrNotFound
}

// RecordsDeletions implements service.DeletionRecorder.
func (f *FakeService) RecordsDeletions() bool {
	return f.RecordsDeletes
}

// UpdateTaskStatus implements service.Service.
func (f *FakeService) UpdateTaskStatus(ctx context.Context, id string, status service.Status) error {
	f.record("UpdateTaskStatus")
	if f.UpdateTaskStatusErr != nil {
		return f.UpdateTaskStatusErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks[i].Status = status
			return nil
		}
	}
	return service.ErrNotFound
}

// CreateHistoryEntry implements service.Service.
func (f *FakeService) CreateHistoryEntry(ctx context.Context, entry service.HistoryEntry) error {
	f.record("CreateHistoryEntry")
	if f.CreateHistoryEntryErr != nil {
		return f.CreateHistoryEntryErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = append(f.history, entry)
	return nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	f.record("ListTasks")
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	return f.Tasks(), nil
}

// ListHistory implements service.Service.
func (f *FakeService) ListHistory(ctx context.Context) ([]service.HistoryEntry, error) {
	f.record("ListHistory")
	if f.ListHistoryErr != nil {
		return nil, f.ListHistoryErr
	}
	return f.History(), nil
}

// ResetAll implements service.Service.
func (f *FakeService) ResetAll(ctx context.Context) error {
	f.record("ResetAll")
	if f.ResetAllErr != nil {
		return f.ResetAllErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = nil
	f.history = nil
	return nil
}
