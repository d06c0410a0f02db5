// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"taskboard/internal/board"
	"taskboard/internal/config"
	"taskboard/internal/exitcode"
	"taskboard/internal/service"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsBoard returns true if the command works on the board.
	// Commands like help, version, login, logout return false.
	NeedsBoard() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *pflag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, paths).
	// b is nil if NeedsBoard() returns false; otherwise it has already been
	// loaded from the configured backend.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, b *board.Store, args []string, out, errOut io.Writer) int
}

// finish reports the outcome of a board mutation.
// A *board.SyncError means the local change happened but the backend did
// not take it; that is a warning with a backend exit code.
func finish(cfg *config.Config, err error, out, errOut io.Writer) int {
	var syncErr *board.SyncError
	switch {
	case err == nil:
		if !cfg.Quiet {
			fmt.Fprintln(out, "ok")
		}
		return exitcode.Success
	case errors.As(err, &syncErr):
		fmt.Fprintf(errOut, "warning: %v\n", err)
		return exitcode.BackendError
	case errors.Is(err, board.ErrEmptyText), errors.Is(err, service.ErrInvalidStatus):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}

// parseStatus parses a status argument, printing the error on failure.
func parseStatus(s string, errOut io.Writer) (service.Status, bool) {
	status, err := service.ParseStatus(s)
	if err != nil {
		fmt.Fprintf(errOut, "error: invalid status: %s\n", s)
		return "", false
	}
	return status, true
}
