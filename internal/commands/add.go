package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskstream/internal/config"
	"taskstream/internal/exitcode"
	"taskstream/internal/service"
	"taskstream/internal/tasksync"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	title string
}

// SetTitle sets the task title (for testing).
func (c *AddCmd) SetTitle(title string) {
	c.title = title
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string     { return "taskstream add [--title <title>] <description...>" }
func (c *AddCmd) NeedsRemote() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.title, "title", "", "")
	fs.StringVar(&c.title, "t", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, tasks *tasksync.Controller, args []string, out, errOut io.Writer) int {
	description := strings.TrimSpace(strings.Join(args, " "))
	if description == "" {
		fmt.Fprintln(errOut, "error: description required")
		return exitcode.UserError
	}

	if _, err := tasks.Create(ctx, service.Draft{Title: c.title, Description: description}); err != nil {
		return reportError(errOut, err)
	}

	printOK(out, cfg.Quiet)
	return exitcode.Success
}
