// Package exitcode defines exit codes for the CLI.
package exitcode

// Process exit codes returned by every command.
const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates bad arguments or a task reference that matches nothing.
	UserError = 1

	// AuthError indicates missing credentials or an invalid config.
	AuthError = 2

	// BackendError indicates the backend failed or could not be reached.
	BackendError = 3
)
