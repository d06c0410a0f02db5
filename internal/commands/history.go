package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"taskboard/internal/board"
	"taskboard/internal/config"
	"taskboard/internal/exitcode"
	"taskboard/internal/output"
)

func init() {
	Register(&HistoryCmd{})
}

// HistoryCmd implements the history command.
type HistoryCmd struct {
	limit int
}

func (c *HistoryCmd) Name() string      { return "history" }
func (c *HistoryCmd) Aliases() []string { return nil }
func (c *HistoryCmd) Synopsis() string  { return "Show the activity history" }
func (c *HistoryCmd) Usage() string     { return "taskboard history [common flags] [--limit <n>]" }
func (c *HistoryCmd) NeedsBoard() bool  { return true }

func (c *HistoryCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.IntVarP(&c.limit, "limit", "n", 0, "")
}

func (c *HistoryCmd) Run(ctx context.Context, cfg *config.Config, b *board.Store, args []string, out, errOut io.Writer) int {
	if c.limit < 0 {
		fmt.Fprintf(errOut, "error: invalid limit: %d\n", c.limit)
		return exitcode.UserError
	}

	log := b.History()
	if log.Len() == 0 {
		fmt.Fprintln(out, output.NoHistory)
		return exitcode.Success
	}

	skip := 0
	if c.limit > 0 && log.Len() > c.limit {
		skip = log.Len() - c.limit
	}
	for entry := range log.Entries() {
		if skip > 0 {
			skip--
			continue
		}
		output.FormatHistoryEntry(out, entry)
	}
	return exitcode.Success
}
