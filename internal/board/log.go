package board

import (
	"iter"
	"sync"

	"taskboard/internal/service"
)

// HistoryView is the read-only side of a Log.
type HistoryView interface {
	Entries() iter.Seq[service.HistoryEntry]
	All() []service.HistoryEntry
	Len() int
}

// readOnlyLog hides a Log's mutating methods from Store callers.
type readOnlyLog struct{ log *Log }

func (r readOnlyLog) Entries() iter.Seq[service.HistoryEntry] { return r.log.Entries() }
func (r readOnlyLog) All() []service.HistoryEntry             { return r.log.All() }
func (r readOnlyLog) Len() int                                { return r.log.Len() }

// Log is an append-only history of board actions in insertion order.
// The zero value is ready to use.
type Log struct {
	mu      sync.RWMutex
	entries []service.HistoryEntry
}

// Append adds an entry at the end of the log.
func (l *Log) Append(e service.HistoryEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
}

// Entries returns a lazy sequence over the log in insertion order.
// Each range over the sequence starts from the beginning and observes the
// entries present when that range began.
func (l *Log) Entries() iter.Seq[service.HistoryEntry] {
	return func(yield func(service.HistoryEntry) bool) {
		l.mu.RLock()
		snapshot := l.entries[:len(l.entries):len(l.entries)]
		l.mu.RUnlock()

		for _, e := range snapshot {
			if !yield(e) {
				return
			}
		}
	}
}

// All returns a copy of every entry.
func (l *Log) All() []service.HistoryEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]service.HistoryEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Clear removes every entry.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// Replace swaps the log contents for entries.
func (l *Log) Replace(entries []service.HistoryEntry) {
	cp := make([]service.HistoryEntry, len(entries))
	copy(cp, entries)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = cp
}

// RemoveMatching drops every entry for which match returns true and
// reports how many were removed. Remaining entries keep their order.
func (l *Log) RemoveMatching(match func(service.HistoryEntry) bool) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := make([]service.HistoryEntry, 0, len(l.entries))
	for _, e := range l.entries {
		if !match(e) {
			kept = append(kept, e)
		}
	}
	removed := len(l.entries) - len(kept)
	l.entries = kept
	return removed
}
