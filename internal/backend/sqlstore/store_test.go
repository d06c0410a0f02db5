package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/service"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "taskboard.db")
	s, err := Open(context.Background(), DialectSQLite, path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, DialectSQLite, "", zerolog.Nop())
	require.Error(t, err)

	_, err = Open(ctx, DialectMySQL, "", zerolog.Nop())
	require.Error(t, err)

	_, err = Open(ctx, Dialect("oracle"), "x", zerolog.Nop())
	require.ErrorContains(t, err, "unknown sql dialect")
}

func TestOpen_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "taskboard.db")

	s, err := Open(ctx, DialectSQLite, path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, s.CreateTask(ctx, service.Task{ID: "task-1", Text: "persist", Status: service.StatusTodo}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, DialectSQLite, path, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()

	tasks, err := s.ListTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []service.Task{{ID: "task-1", Text: "persist", Status: service.StatusTodo}}, tasks)
	assert.Equal(t, DialectSQLite, s.Dialect())
}

func TestSQLiteURI(t *testing.T) {
	dir := t.TempDir()
	pragmas := fmt.Sprintf("?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)", busyTimeout)

	uri, err := sqliteURI(filepath.Join(dir, "board.db"))
	require.NoError(t, err)
	assert.Equal(t, "file://"+filepath.ToSlash(dir)+"/board.db"+pragmas, uri)

	uri, err = sqliteURI(filepath.Join(dir, "a?b#c.db"))
	require.NoError(t, err)
	assert.Equal(t, "file://"+filepath.ToSlash(dir)+"/a%3Fb%23c.db"+pragmas, uri)
}

func TestOpen_PathWithURIDelimiters(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "board?mode=memory#1.db")

	s, err := Open(ctx, DialectSQLite, path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, s.CreateTask(ctx, service.Task{ID: "task-1", Text: "a", Status: service.StatusTodo}))
	require.NoError(t, s.Close())

	assert.FileExists(t, path)
	assert.NoFileExists(t, filepath.Join(dir, "board"))
}

func TestStore_Tasks(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.CreateTask(ctx, service.Task{ID: "task-2", Text: "second", Status: service.StatusTodo}))
	require.NoError(t, s.CreateTask(ctx, service.Task{ID: "task-1", Text: "first", Status: service.StatusInProgress}))
	require.NoError(t, s.UpdateTaskStatus(ctx, "task-2", service.StatusCompleted))
	require.NoError(t, s.UpdateTaskStatus(ctx, "task-2", service.StatusCompleted), "unchanged status is not an error")

	tasks, err := s.ListTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []service.Task{
		{ID: "task-2", Text: "second", Status: service.StatusCompleted},
		{ID: "task-1", Text: "first", Status: service.StatusInProgress},
	}, tasks, "tasks are listed in insertion order")

	require.NoError(t, s.DeleteTask(ctx, "task-2"))
	tasks, err = s.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "task-1", tasks[0].ID)
}

func TestStore_Errors(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	task := service.Task{ID: "task-1", Text: "a", Status: service.StatusTodo}

	require.NoError(t, s.CreateTask(ctx, task))
	require.ErrorIs(t, s.CreateTask(ctx, task), service.ErrConflict)
	require.ErrorIs(t, s.DeleteTask(ctx, "task-404"), service.ErrNotFound)
	require.ErrorIs(t, s.UpdateTaskStatus(ctx, "task-404", service.StatusTodo), service.ErrNotFound)
	require.ErrorIs(t, s.CreateHistoryEntry(ctx, service.HistoryEntry{Action: "x"}), service.ErrMissingTimestamp)
}

func TestStore_ListTasksSkipsUnknownStatus(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.CreateTask(ctx, service.Task{ID: "task-1", Text: "live", Status: service.StatusTodo}))
	_, err := s.db.ExecContext(ctx, `INSERT INTO tasks (id, text, status) VALUES ('task-2', 'gone', 'deleted')`)
	require.NoError(t, err)

	tasks, err := s.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "task-1", tasks[0].ID)
}

func TestStore_History(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	entries, err := s.ListHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	want := []service.HistoryEntry{
		{Action: `Task "a" added to todo`, Timestamp: "9:30:00 AM"},
		{Action: `Task "a" moved from todo to completed`, Timestamp: "9:30:01 AM"},
		{Action: `Task "a" added to todo`, Timestamp: "9:30:00 AM"},
	}
	for _, e := range want {
		require.NoError(t, s.CreateHistoryEntry(ctx, e))
	}

	entries, err = s.ListHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, entries, "duplicates are kept in order")
}

func TestStore_ResetAll(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.CreateTask(ctx, service.Task{ID: "task-1", Text: "a", Status: service.StatusTodo}))
	require.NoError(t, s.CreateHistoryEntry(ctx, service.HistoryEntry{Action: "x", Timestamp: "1:00:00 PM"}))

	require.NoError(t, s.ResetAll(ctx))

	tasks, err := s.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	entries, err := s.ListHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, s.CreateTask(ctx, service.Task{ID: "task-1", Text: "again", Status: service.StatusTodo}),
		"ids are reusable after reset")
}

func TestStore_ConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.CreateHistoryEntry(ctx, service.HistoryEntry{
				Action:    fmt.Sprintf("entry %d", i),
				Timestamp: "1:00:00 PM",
			}))
		}(i)
	}
	wg.Wait()

	entries, err := s.ListHistory(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 20)
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, true},
		{"wrapped mysql duplicate", fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062}), true},
		{"mysql other", &mysql.MySQLError{Number: 1146, Message: "Table doesn't exist"}, false},
		{"sqlite message", errors.New("constraint failed: UNIQUE constraint failed: tasks.id (2067)"), true},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueViolation(tt.err))
		})
	}
}
