package commands

import (
	"context"
	"flag"
	"io"

	"taskstream/internal/config"
	"taskstream/internal/exitcode"
	"taskstream/internal/tasksync"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "taskstream rm <ref>" }
func (c *RmCmd) NeedsRemote() bool { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, tasks *tasksync.Controller, args []string, out, errOut io.Writer) int {
	task, err := lookupTask(ctx, tasks, args)
	if err != nil {
		return reportError(errOut, err)
	}

	if err := tasks.Delete(ctx, task.ID); err != nil {
		return reportError(errOut, err)
	}

	printOK(out, cfg.Quiet)
	return exitcode.Success
}
