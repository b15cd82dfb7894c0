// Package main is the entry point for the taskstream CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"taskstream/internal/backend"
	"taskstream/internal/cli"
	"taskstream/internal/commands"
)

func main() {
	// Cancel on interrupt; serve shuts down gracefully and requests abort
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, backend.New)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
