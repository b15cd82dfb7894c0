package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskstream/internal/config"
	"taskstream/internal/exitcode"
	"taskstream/internal/output"
	"taskstream/internal/tasksync"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `taskstream` (no args) and `taskstream list`.
type ListCmd struct {
	showIDs bool
}

// SetShowIDs toggles printing of task IDs (for testing).
func (c *ListCmd) SetShowIDs(show bool) {
	c.showIDs = show
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string     { return "taskstream list [--ids]" }
func (c *ListCmd) NeedsRemote() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.showIDs, "ids", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, tasks *tasksync.Controller, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	if err := tasks.Bootstrap(ctx); err != nil {
		return reportError(errOut, err)
	}

	all := tasks.Tasks()
	if len(all) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	for i, task := range all {
		if c.showIDs {
			output.FormatTaskWithID(out, i+1, task)
		} else {
			output.FormatTask(out, i+1, task)
		}
	}
	return exitcode.Success
}
