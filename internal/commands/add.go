package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"taskboard/internal/board"
	"taskboard/internal/config"
	"taskboard/internal/exitcode"
	"taskboard/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	status string
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string     { return "taskboard add [common flags] [--status <status>] <text...>" }
func (c *AddCmd) NeedsBoard() bool  { return true }

func (c *AddCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.status, "status", "s", string(service.StatusTodo), "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, b *board.Store, args []string, out, errOut io.Writer) int {
	text := strings.Join(args, " ")
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(errOut, "error: task text required")
		return exitcode.UserError
	}

	status, ok := parseStatus(c.status, errOut)
	if !ok {
		return exitcode.UserError
	}

	b.SetDraft(text, status)
	_, err := b.SubmitDraft(ctx)
	return finish(cfg, err, out, errOut)
}
