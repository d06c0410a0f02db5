package board

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"taskboard/internal/service"
)

func entry(action string) service.HistoryEntry {
	return service.HistoryEntry{Action: action, Timestamp: "9:00:00 AM"}
}

func TestLog_EntriesPreservesOrder(t *testing.T) {
	var l Log
	l.Append(entry("one"))
	l.Append(entry("two"))
	l.Append(entry("three"))

	got := slices.Collect(l.Entries())
	assert.Equal(t, []service.HistoryEntry{entry("one"), entry("two"), entry("three")}, got)
}

func TestLog_EntriesIsRestartable(t *testing.T) {
	var l Log
	l.Append(entry("a"))
	l.Append(entry("b"))

	seq := l.Entries()
	first := slices.Collect(seq)
	second := slices.Collect(seq)

	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
}

func TestLog_EntriesStopsEarly(t *testing.T) {
	var l Log
	for _, a := range []string{"a", "b", "c"} {
		l.Append(entry(a))
	}

	var seen []string
	for e := range l.Entries() {
		seen = append(seen, e.Action)
		if e.Action == "b" {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestLog_EntriesSnapshotIgnoresLaterAppends(t *testing.T) {
	var l Log
	l.Append(entry("a"))

	var seen []string
	for e := range l.Entries() {
		l.Append(entry("late"))
		seen = append(seen, e.Action)
	}

	assert.Equal(t, []string{"a"}, seen)
	assert.Equal(t, 2, l.Len())
}

func TestLog_RemoveMatching(t *testing.T) {
	var l Log
	l.Append(entry(`Task "milk" added to todo`))
	l.Append(entry(`Task "eggs" added to todo`))
	l.Append(entry(`Task "milk" moved from todo to completed`))

	removed := l.RemoveMatching(func(e service.HistoryEntry) bool {
		return strings.Contains(e.Action, `"milk"`)
	})

	assert.Equal(t, 2, removed)
	assert.Equal(t, []service.HistoryEntry{entry(`Task "eggs" added to todo`)}, l.All())
}

func TestLog_ClearAndReplace(t *testing.T) {
	var l Log
	l.Append(entry("a"))
	l.Clear()
	assert.Equal(t, 0, l.Len())

	in := []service.HistoryEntry{entry("x"), entry("y")}
	l.Replace(in)
	in[0] = entry("mutated")

	assert.Equal(t, []service.HistoryEntry{entry("x"), entry("y")}, l.All())
}
