// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"taskboard/internal/service"
)

const (
	// ColumnSeparator is the separator line around column headers.
	ColumnSeparator = "------------"

	// NoHistory is printed when the history is empty.
	NoHistory = "No history yet."
)

// Column is one board column with its tasks in display order.
type Column struct {
	Status service.Status
	Tasks  []service.Task
}

// FormatBoard prints every column with its header. Tasks are numbered
// from 1 across the whole board, in column order.
func FormatBoard(w io.Writer, columns []Column, showIDs bool) {
	num := 0
	for _, col := range columns {
		FormatColumnHeader(w, col.Status, len(col.Tasks))
		if len(col.Tasks) == 0 {
			fmt.Fprintln(w, "      (empty)")
		}
		for _, task := range col.Tasks {
			num++
			FormatTask(w, num, task, showIDs)
		}
	}
}

// FormatColumnHeader formats a column section header.
func FormatColumnHeader(w io.Writer, status service.Status, count int) {
	fmt.Fprintln(w, ColumnSeparator)
	fmt.Fprintf(w, "%s (%d)\n", status.Label(), count)
	fmt.Fprintln(w, ColumnSeparator)
}

// FormatTask formats a task line.
// Format: "{N:>4}  {TEXT}\n", with "  [{ID}]" appended when showID is set.
func FormatTask(w io.Writer, num int, task service.Task, showID bool) {
	text := normalizeText(task.Text)
	if showID {
		fmt.Fprintf(w, "%4d  %s  [%s]\n", num, text, task.ID)
		return
	}
	fmt.Fprintf(w, "%4d  %s\n", num, text)
}

// FormatHistoryEntry formats a history line: "<action> at <timestamp>".
func FormatHistoryEntry(w io.Writer, entry service.HistoryEntry) {
	fmt.Fprintln(w, normalizeText(entry.String()))
}

// normalizeText normalizes text for single-line display.
// - Empty or whitespace-only text becomes "(untitled)"
// - Newlines are replaced with spaces
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")

	if strings.TrimSpace(text) == "" {
		return "(untitled)"
	}
	return text
}
