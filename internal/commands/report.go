package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"taskstream/internal/exitcode"
	"taskstream/internal/service"
	"taskstream/internal/tasksync"
)

// reportError prints err to errOut and returns the matching exit code.
// Remote failures are backend errors; everything else is the user's.
func reportError(errOut io.Writer, err error) int {
	var opErr *service.OpError
	if errors.As(err, &opErr) {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
	fmt.Fprintf(errOut, "error: %v\n", err)
	return exitcode.UserError
}

// lookupTask loads the collection and resolves the reference in args[0].
func lookupTask(ctx context.Context, tasks *tasksync.Controller, args []string) (service.Task, error) {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return service.Task{}, err
	}
	if err := tasks.Bootstrap(ctx); err != nil {
		return service.Task{}, err
	}
	return ResolveTaskRef(tasks.Tasks(), ref)
}

// printOK prints "ok" unless quiet.
func printOK(out io.Writer, quiet bool) {
	if !quiet {
		fmt.Fprintln(out, "ok")
	}
}
