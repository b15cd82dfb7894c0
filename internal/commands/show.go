package commands

import (
	"context"
	"flag"
	"io"

	"taskstream/internal/config"
	"taskstream/internal/exitcode"
	"taskstream/internal/output"
	"taskstream/internal/tasksync"
)

func init() {
	Register(&ShowCmd{})
}

// ShowCmd prints every field of one task.
type ShowCmd struct{}

func (c *ShowCmd) Name() string      { return "show" }
func (c *ShowCmd) Aliases() []string { return nil }
func (c *ShowCmd) Synopsis() string  { return "Show a task" }
func (c *ShowCmd) Usage() string     { return "taskstream show <ref>" }
func (c *ShowCmd) NeedsRemote() bool { return true }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, tasks *tasksync.Controller, args []string, out, errOut io.Writer) int {
	task, err := lookupTask(ctx, tasks, args)
	if err != nil {
		return reportError(errOut, err)
	}
	output.FormatTaskDetail(out, task)
	return exitcode.Success
}
