package commands

import (
	"context"
	"io"

	"github.com/spf13/pflag"

	"taskboard/internal/board"
	"taskboard/internal/config"
	"taskboard/internal/exitcode"
	"taskboard/internal/output"
)

func init() {
	Register(&BoardCmd{})
}

// BoardCmd implements the board command.
type BoardCmd struct {
	showIDs bool
}

func (c *BoardCmd) Name() string      { return "board" }
func (c *BoardCmd) Aliases() []string { return []string{"ls"} }
func (c *BoardCmd) Synopsis() string  { return "Show the board" }
func (c *BoardCmd) Usage() string     { return "taskboard board [common flags] [--ids]" }
func (c *BoardCmd) NeedsBoard() bool  { return true }

func (c *BoardCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&c.showIDs, "ids", "i", false, "")
}

func (c *BoardCmd) Run(ctx context.Context, cfg *config.Config, b *board.Store, args []string, out, errOut io.Writer) int {
	output.FormatBoard(out, boardColumns(b), c.showIDs)
	return exitcode.Success
}
