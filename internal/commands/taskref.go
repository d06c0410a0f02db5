package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"taskboard/internal/board"
	"taskboard/internal/exitcode"
	"taskboard/internal/output"
	"taskboard/internal/service"
)

// idPrefix starts every task ID minted by the board.
const idPrefix = "task-"

// TaskRef represents a parsed task reference.
type TaskRef struct {
	ID  string // set when the reference is a task ID
	Num int    // 1-based board number otherwise
}

func (r TaskRef) String() string {
	if r.ID != "" {
		return r.ID
	}
	return strconv.Itoa(r.Num)
}

var (
	// ErrTaskRefRequired indicates no task reference was provided.
	ErrTaskRefRequired = errors.New("task reference required")

	// ErrTaskNotFound indicates a reference that matches no task.
	ErrTaskNotFound = errors.New("task not found")
)

// ParseTaskRef parses the task reference in args[0].
//
// Parsing rules:
// 1. If the arg is all digits → board number as printed by `board`
// 2. If the arg starts with "task-" → task ID
// 3. Otherwise → error: invalid task reference: <ref>
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return TaskRef{}, ErrTaskRefRequired
	}

	arg := strings.TrimSpace(args[0])

	if isAllDigits(arg) {
		num, err := strconv.Atoi(arg)
		if err != nil || num < 1 {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
		}
		return TaskRef{Num: num}, nil
	}

	if strings.HasPrefix(arg, idPrefix) && len(arg) > len(idPrefix) {
		return TaskRef{ID: arg}, nil
	}

	return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// boardColumns groups the store's tasks into display columns.
func boardColumns(b *board.Store) []output.Column {
	columns := make([]output.Column, 0, len(service.Statuses))
	for _, status := range service.Statuses {
		columns = append(columns, output.Column{Status: status, Tasks: b.TasksByStatus(status)})
	}
	return columns
}

// ResolveTaskRef finds the task a reference points to. Numbers count across
// the board in column order, exactly as `board` prints them.
func ResolveTaskRef(b *board.Store, ref TaskRef) (service.Task, error) {
	if ref.ID != "" {
		task, ok := b.Task(ref.ID)
		if !ok {
			return service.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, ref.ID)
		}
		return task, nil
	}

	n := ref.Num
	for _, col := range boardColumns(b) {
		if n <= len(col.Tasks) {
			return col.Tasks[n-1], nil
		}
		n -= len(col.Tasks)
	}
	return service.Task{}, fmt.Errorf("%w: %d", ErrTaskNotFound, ref.Num)
}

// lookupTask parses and resolves the reference in args, printing any error.
// The returned code is exitcode.Success when the task was found.
func lookupTask(b *board.Store, args []string, errOut io.Writer) (service.Task, int) {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.Task{}, exitcode.UserError
	}
	task, err := ResolveTaskRef(b, ref)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.Task{}, exitcode.UserError
	}
	return task, exitcode.Success
}
