package commands

import (
	"context"
	"io"

	"github.com/spf13/pflag"

	"taskboard/internal/board"
	"taskboard/internal/config"
)

func init() {
	Register(&ResetCmd{})
}

// ResetCmd implements the reset command.
type ResetCmd struct{}

func (c *ResetCmd) Name() string      { return "reset" }
func (c *ResetCmd) Aliases() []string { return nil }
func (c *ResetCmd) Synopsis() string  { return "Delete every task and all history" }
func (c *ResetCmd) Usage() string     { return "taskboard reset [common flags]" }
func (c *ResetCmd) NeedsBoard() bool  { return true }

func (c *ResetCmd) RegisterFlags(fs *pflag.FlagSet) {}

// Run clears the board. The dispatcher builds the store with remote reset
// enabled, so the backend is cleared too.
func (c *ResetCmd) Run(ctx context.Context, cfg *config.Config, b *board.Store, args []string, out, errOut io.Writer) int {
	return finish(cfg, b.Reset(ctx), out, errOut)
}
