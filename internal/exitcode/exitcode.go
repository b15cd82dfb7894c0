// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, unknown task, bad status).
	UserError = 1

	// ConfigError indicates a configuration or credentials problem.
	ConfigError = 2

	// BackendError indicates a remote store, network or server error.
	BackendError = 3
)
