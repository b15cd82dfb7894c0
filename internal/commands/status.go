package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskstream/internal/config"
	"taskstream/internal/exitcode"
	"taskstream/internal/service"
	"taskstream/internal/tasksync"
)

func init() {
	Register(&StatusCmd{})
	Register(&SetStatusCmd{name: "start", status: service.StatusInProgress, synopsis: "Mark a task in progress"})
	Register(&SetStatusCmd{name: "done", status: service.StatusDone, synopsis: "Mark a task done"})
	Register(&SetStatusCmd{name: "reopen", status: service.StatusTodo, synopsis: "Mark a task to do"})
}

// StatusCmd implements `status <ref> <status>`.
type StatusCmd struct{}

func (c *StatusCmd) Name() string      { return "status" }
func (c *StatusCmd) Aliases() []string { return nil }
func (c *StatusCmd) Synopsis() string  { return "Change the status of a task" }
func (c *StatusCmd) Usage() string     { return "taskstream status <ref> <todo|in-progress|done>" }
func (c *StatusCmd) NeedsRemote() bool { return true }

func (c *StatusCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatusCmd) Run(ctx context.Context, cfg *config.Config, tasks *tasksync.Controller, args []string, out, errOut io.Writer) int {
	if len(args) < 2 {
		fmt.Fprintln(errOut, "error: task reference and status required")
		return exitcode.UserError
	}

	status, err := service.ParseStatus(args[1])
	if err != nil {
		return reportError(errOut, err)
	}
	return runSetStatus(ctx, cfg, tasks, args[:1], status, out, errOut)
}

// SetStatusCmd moves a task to a fixed status. It backs start, done and reopen.
type SetStatusCmd struct {
	name     string
	status   service.Status
	synopsis string
}

func (c *SetStatusCmd) Name() string      { return c.name }
func (c *SetStatusCmd) Aliases() []string { return nil }
func (c *SetStatusCmd) Synopsis() string  { return c.synopsis }
func (c *SetStatusCmd) Usage() string     { return "taskstream " + c.name + " <ref>" }
func (c *SetStatusCmd) NeedsRemote() bool { return true }

func (c *SetStatusCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SetStatusCmd) Run(ctx context.Context, cfg *config.Config, tasks *tasksync.Controller, args []string, out, errOut io.Writer) int {
	return runSetStatus(ctx, cfg, tasks, args, c.status, out, errOut)
}

// runSetStatus is the shared implementation for the status commands.
func runSetStatus(ctx context.Context, cfg *config.Config, tasks *tasksync.Controller, args []string, status service.Status, out, errOut io.Writer) int {
	task, err := lookupTask(ctx, tasks, args)
	if err != nil {
		return reportError(errOut, err)
	}

	if _, err := tasks.SetStatus(ctx, task.ID, status); err != nil {
		return reportError(errOut, err)
	}

	printOK(out, cfg.Quiet)
	return exitcode.Success
}
