package googletasks

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	tasks "google.golang.org/api/tasks/v1"
	"gopkg.in/yaml.v3"

	"taskboard/internal/service"
)

// Google task statuses.
const (
	googleNeedsAction = "needsAction"
	googleCompleted   = "completed"
)

// boardMeta is the YAML document stored in a board task's notes.
type boardMeta struct {
	ID     string         `yaml:"id"`
	Status service.Status `yaml:"status"`
}

func encodeNotes(id string, status service.Status) (string, error) {
	data, err := yaml.Marshal(boardMeta{ID: id, Status: status})
	if err != nil {
		return "", fmt.Errorf("encode task notes: %w", err)
	}
	return string(data), nil
}

func decodeNotes(notes string) (boardMeta, bool) {
	var meta boardMeta
	if strings.TrimSpace(notes) == "" {
		return meta, false
	}
	if err := yaml.Unmarshal([]byte(notes), &meta); err != nil {
		return boardMeta{}, false
	}
	return meta, meta.ID != ""
}

func googleStatus(status service.Status) string {
	if status == service.StatusCompleted {
		return googleCompleted
	}
	return googleNeedsAction
}

// boardTask converts a Google task into a board task. A task ticked off in
// Google's own apps shows up as completed; one unticked there drops back to
// todo.
func boardTask(gt *tasks.Task) (service.Task, bool) {
	meta, ok := decodeNotes(gt.Notes)
	if !ok {
		return service.Task{}, false
	}

	status := meta.Status
	switch {
	case gt.Status == googleCompleted:
		status = service.StatusCompleted
	case status == service.StatusCompleted:
		status = service.StatusTodo
	}
	if !status.Valid() {
		return service.Task{}, false
	}
	return service.Task{ID: meta.ID, Text: gt.Title, Status: status}, true
}

// historyMeta is the YAML document stored in a history task's notes. Seq
// is the writer's creation time in unix nanoseconds and orders entries that
// share the second-resolution Updated stamp.
type historyMeta struct {
	Seq       int64  `yaml:"seq"`
	Timestamp string `yaml:"timestamp"`
}

func encodeHistoryNotes(seq int64, timestamp string) (string, error) {
	data, err := yaml.Marshal(historyMeta{Seq: seq, Timestamp: timestamp})
	if err != nil {
		return "", fmt.Errorf("encode history notes: %w", err)
	}
	return string(data), nil
}

// decodeHistoryNotes reads history notes. Notes holding only the timestamp
// text decode with a zero Seq.
func decodeHistoryNotes(notes string) historyMeta {
	var meta historyMeta
	if err := yaml.Unmarshal([]byte(notes), &meta); err == nil && meta.Timestamp != "" {
		meta.Timestamp = strings.TrimSpace(meta.Timestamp)
		return meta
	}
	return historyMeta{Timestamp: strings.TrimSpace(notes)}
}

// historyEntries maps history-list tasks to entries, oldest first. Entries
// sort on Seq, or on Updated when Seq is missing. Google lists new tasks
// first, so items are walked in reverse before the stable sort to keep ties
// in insertion order.
func historyEntries(items []*tasks.Task) []service.HistoryEntry {
	type record struct {
		entry service.HistoryEntry
		key   int64
	}

	records := make([]record, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		gt := items[i]
		meta := decodeHistoryNotes(gt.Notes)
		entry := service.HistoryEntry{Action: gt.Title, Timestamp: meta.Timestamp}
		if entry.Validate() != nil {
			continue
		}
		key := meta.Seq
		if key <= 0 {
			key = updatedNanos(gt.Updated)
		}
		records = append(records, record{entry: entry, key: key})
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].key < records[j].key
	})

	entries := make([]service.HistoryEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, r.entry)
	}
	return entries
}

func updatedNanos(updated string) int64 {
	t, err := time.Parse(time.RFC3339Nano, updated)
	if err != nil {
		return 0
	}
	return t.UnixNano()
}

// sortTasks orders tasks by the millisecond suffix of their IDs, which is
// creation order for IDs minted by the board.
func sortTasks(ts []service.Task) {
	sort.SliceStable(ts, func(i, j int) bool {
		a, aok := idMillis(ts[i].ID)
		b, bok := idMillis(ts[j].ID)
		if aok && bok {
			return a < b
		}
		if aok != bok {
			return aok
		}
		return ts[i].ID < ts[j].ID
	})
}

func idMillis(id string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimPrefix(id, "task-"), 10, 64)
	return n, err == nil && strings.HasPrefix(id, "task-")
}
