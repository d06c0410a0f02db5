package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/board"
	"taskboard/internal/service"
	"taskboard/internal/testutil"
)

func TestParseTaskRef(t *testing.T) {
	tests := []struct {
		args    []string
		want    TaskRef
		wantErr string
	}{
		{args: []string{"1"}, want: TaskRef{Num: 1}},
		{args: []string{" 12 "}, want: TaskRef{Num: 12}},
		{args: []string{"task-1710063000000"}, want: TaskRef{ID: "task-1710063000000"}},
		{args: []string{"task-1", "todo"}, want: TaskRef{ID: "task-1"}},
		{args: nil, wantErr: "task reference required"},
		{args: []string{"  "}, wantErr: "task reference required"},
		{args: []string{"0"}, wantErr: "invalid task reference: 0"},
		{args: []string{"-1"}, wantErr: "invalid task reference: -1"},
		{args: []string{"task-"}, wantErr: "invalid task reference: task-"},
		{args: []string{"abc"}, wantErr: "invalid task reference: abc"},
		{args: []string{"١"}, wantErr: "invalid task reference: ١"},
	}
	for _, tt := range tests {
		got, err := ParseTaskRef(tt.args)
		if tt.wantErr != "" {
			assert.EqualError(t, err, tt.wantErr, "args %q", tt.args)
			continue
		}
		require.NoError(t, err, "args %q", tt.args)
		assert.Equal(t, tt.want, got)
	}
}

func TestTaskRefString(t *testing.T) {
	assert.Equal(t, "3", TaskRef{Num: 3}.String())
	assert.Equal(t, "task-9", TaskRef{ID: "task-9"}.String())
}

func TestResolveTaskRef(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("task-1", "Done thing", service.StatusCompleted)
	svc.AddTask("task-2", "First", service.StatusTodo)
	svc.AddTask("task-3", "Busy", service.StatusInProgress)
	svc.AddTask("task-4", "Second", service.StatusTodo)

	b := board.New(board.WithRemote(svc))
	require.NoError(t, b.RefreshFromRemote(context.Background()))

	// Numbers follow column order, not insertion order.
	for num, wantID := range map[int]string{1: "task-2", 2: "task-4", 3: "task-3", 4: "task-1"} {
		task, err := ResolveTaskRef(b, TaskRef{Num: num})
		require.NoError(t, err)
		assert.Equal(t, wantID, task.ID, "number %d", num)
	}

	task, err := ResolveTaskRef(b, TaskRef{ID: "task-3"})
	require.NoError(t, err)
	assert.Equal(t, "Busy", task.Text)

	_, err = ResolveTaskRef(b, TaskRef{Num: 5})
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.EqualError(t, err, "task not found: 5")

	_, err = ResolveTaskRef(b, TaskRef{ID: "task-77"})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}
