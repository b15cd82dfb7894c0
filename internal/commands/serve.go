package commands

import (
	"context"
	"flag"
	"io"

	"taskstream/internal/config"
	"taskstream/internal/exitcode"
	"taskstream/internal/logging"
	"taskstream/internal/server"
	"taskstream/internal/tasksync"
)

func init() {
	Register(&ServeCmd{})
}

// ServeCmd runs the in-memory task server until the context is cancelled.
type ServeCmd struct {
	addr string
}

// SetAddr sets the listen address (for testing).
func (c *ServeCmd) SetAddr(addr string) {
	c.addr = addr
}

func (c *ServeCmd) Name() string      { return "serve" }
func (c *ServeCmd) Aliases() []string { return nil }
func (c *ServeCmd) Synopsis() string  { return "Run a local task server" }
func (c *ServeCmd) Usage() string     { return "taskstream serve [--addr <host:port>]" }
func (c *ServeCmd) NeedsRemote() bool { return false }

func (c *ServeCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.addr, "addr", "", "")
}

func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config, tasks *tasksync.Controller, args []string, out, errOut io.Writer) int {
	addr := c.addr
	if addr == "" {
		addr = cfg.ListenAddr
	}
	if addr == "" {
		addr = config.DefaultListenAddr
	}

	logger := logging.New(errOut, cfg.Debug)
	if cfg.Quiet {
		logger = logging.Discard()
	}

	srv := newServer(cfg, errOut)
	logger.Info("serving tasks", "addr", addr)
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		logger.Error("server stopped", "error", err)
		return exitcode.BackendError
	}
	logger.Info("server stopped")
	return exitcode.Success
}

// newServer builds the task server; request logs go to errOut unless quiet.
func newServer(cfg *config.Config, errOut io.Writer) *server.Server {
	if cfg.Quiet {
		return server.New()
	}
	return server.New(server.WithRequestLogging(config.AppName, errOut, !cfg.Debug))
}
