package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"taskboard/internal/board"
	"taskboard/internal/config"
	"taskboard/internal/exitcode"
	"taskboard/internal/service"
)

func init() {
	Register(&MoveCmd{})
	Register(&DoneCmd{})
}

// MoveCmd implements the mv command.
type MoveCmd struct{}

func (c *MoveCmd) Name() string      { return "mv" }
func (c *MoveCmd) Aliases() []string { return []string{"move"} }
func (c *MoveCmd) Synopsis() string  { return "Move a task to another column" }
func (c *MoveCmd) Usage() string     { return "taskboard mv [common flags] <ref> <status>" }
func (c *MoveCmd) NeedsBoard() bool  { return true }

func (c *MoveCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *MoveCmd) Run(ctx context.Context, cfg *config.Config, b *board.Store, args []string, out, errOut io.Writer) int {
	task, code := lookupTask(b, args, errOut)
	if code != exitcode.Success {
		return code
	}
	if len(args) < 2 {
		fmt.Fprintln(errOut, "error: status required")
		return exitcode.UserError
	}
	status, ok := parseStatus(args[1], errOut)
	if !ok {
		return exitcode.UserError
	}
	return finish(cfg, b.MoveTask(ctx, task.ID, status), out, errOut)
}

// DoneCmd implements the done command.
type DoneCmd struct{}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return nil }
func (c *DoneCmd) Synopsis() string  { return "Move a task to completed" }
func (c *DoneCmd) Usage() string     { return "taskboard done [common flags] <ref>" }
func (c *DoneCmd) NeedsBoard() bool  { return true }

func (c *DoneCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, b *board.Store, args []string, out, errOut io.Writer) int {
	task, code := lookupTask(b, args, errOut)
	if code != exitcode.Success {
		return code
	}
	return finish(cfg, b.MoveTask(ctx, task.ID, service.StatusCompleted), out, errOut)
}
