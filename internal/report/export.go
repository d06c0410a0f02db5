// Package report renders a board snapshot as JSON, CSV or PDF.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"taskboard/internal/board"
	"taskboard/internal/service"
)

// Format is an export format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
)

// ParseFormat parses a format name (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %s", s)
	}
}

// Snapshot is the exported view of a board.
type Snapshot struct {
	Tasks   []service.Task         `json:"tasks"`
	History []service.HistoryEntry `json:"history"`
}

// SnapshotOf captures the store's tasks in board column order and its
// history in insertion order.
func SnapshotOf(s *board.Store) Snapshot {
	snap := Snapshot{
		Tasks:   []service.Task{},
		History: s.History().All(),
	}
	for _, status := range service.Statuses {
		snap.Tasks = append(snap.Tasks, s.TasksByStatus(status)...)
	}
	if snap.History == nil {
		snap.History = []service.HistoryEntry{}
	}
	return snap
}

// Export writes snap to w in the given format.
func Export(w io.Writer, format Format, snap Snapshot) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case FormatCSV:
		return writeCSV(w, snap)
	case FormatPDF:
		return writePDF(w, snap)
	default:
		return fmt.Errorf("unknown format %s", format)
	}
}

// writeCSV emits one table: task rows first, then history rows.
func writeCSV(w io.Writer, snap Snapshot) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"record", "id", "text", "status", "action", "timestamp"})
	for _, t := range snap.Tasks {
		_ = cw.Write([]string{"task", t.ID, t.Text, string(t.Status), "", ""})
	}
	for _, e := range snap.History {
		_ = cw.Write([]string{"history", "", "", "", e.Action, e.Timestamp})
	}
	cw.Flush()
	return cw.Error()
}

func writePDF(w io.Writer, snap Snapshot) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Task Board")
	pdf.Ln(12)

	num := 0
	for _, status := range service.Statuses {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(40, 8, status.Label())
		pdf.Ln(9)
		pdf.SetFont("Arial", "", 10)

		empty := true
		for _, t := range snap.Tasks {
			if t.Status != status {
				continue
			}
			empty = false
			num++
			pdf.MultiCell(0, 6, tr(fmt.Sprintf("%d. %s", num, t.Text)), "0", "L", false)
		}
		if empty {
			pdf.MultiCell(0, 6, "(empty)", "0", "L", false)
		}
		pdf.Ln(4)
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 8, "History")
	pdf.Ln(9)
	pdf.SetFont("Arial", "", 10)
	if len(snap.History) == 0 {
		pdf.MultiCell(0, 6, "No history yet.", "0", "L", false)
	}
	for _, e := range snap.History {
		pdf.MultiCell(0, 6, tr(e.String()), "0", "L", false)
	}

	return pdf.Output(w)
}
