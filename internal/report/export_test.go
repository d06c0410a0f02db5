package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/board"
	"taskboard/internal/service"
)

func sampleSnapshot() Snapshot {
	return Snapshot{
		Tasks: []service.Task{
			{ID: "task-1", Text: "Buy milk", Status: service.StatusTodo},
			{ID: "task-2", Text: "Café, \"quoted\"", Status: service.StatusCompleted},
		},
		History: []service.HistoryEntry{
			{Action: `Task "Buy milk" added to todo`, Timestamp: "9:30:00 AM"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"json": FormatJSON, " CSV ": FormatCSV, "Pdf": FormatPDF} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("xml")
	require.EqualError(t, err, "unknown format xml")
}

func TestSnapshotOf(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)
	s := board.New(board.WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))

	_, err := s.AddTask(ctx, "done first", service.StatusCompleted)
	require.NoError(t, err)
	_, err = s.AddTask(ctx, "todo second", service.StatusTodo)
	require.NoError(t, err)

	snap := SnapshotOf(s)

	require.Len(t, snap.Tasks, 2)
	assert.Equal(t, "todo second", snap.Tasks[0].Text, "tasks follow column order")
	assert.Equal(t, "done first", snap.Tasks[1].Text)
	assert.Len(t, snap.History, 2)
}

func TestSnapshotOf_EmptyBoard(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, FormatJSON, SnapshotOf(board.New())))
	assert.JSONEq(t, `{"tasks":[],"history":[]}`, buf.String())
}

func TestExport_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, FormatJSON, sampleSnapshot()))

	var got Snapshot
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sampleSnapshot(), got)
}

func TestExport_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, FormatCSV, sampleSnapshot()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"record", "id", "text", "status", "action", "timestamp"},
		{"task", "task-1", "Buy milk", "todo", "", ""},
		{"task", "task-2", "Café, \"quoted\"", "completed", "", ""},
		{"history", "", "", "", `Task "Buy milk" added to todo`, "9:30:00 AM"},
	}, records)
}

func TestExport_PDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, FormatPDF, sampleSnapshot()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestExport_UnknownFormat(t *testing.T) {
	err := Export(&bytes.Buffer{}, Format("xml"), Snapshot{})
	require.Error(t, err)
}
