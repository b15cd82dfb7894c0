package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskstream/internal/config"
	"taskstream/internal/exitcode"
	"taskstream/internal/tasksync"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "taskstream help" }
func (c *HelpCmd) NeedsRemote() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, tasks *tasksync.Controller, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  taskstream                                         List all tasks
  taskstream list [common flags] [--ids]             List all tasks
  taskstream show [common flags] <ref>
  taskstream add [common flags] [--title <title>] <description...>
  taskstream create [common flags] [--title <title>] <description...>
  taskstream status [common flags] <ref> <todo|in-progress|done>
  taskstream start [common flags] <ref>
  taskstream done [common flags] <ref>
  taskstream reopen [common flags] <ref>
  taskstream rm [common flags] <ref>
  taskstream serve [common flags] [--addr <host:port>]
  taskstream help
  taskstream version

A <ref> is the task's number in the listing, or id:<task-id>.

Common flags:
  --config <dir>      Override config directory
  --endpoint <url>    Override the task store URL
  --quiet             Suppress informational output
  --debug             Print debug logs to stderr
`
