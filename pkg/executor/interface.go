package executor

import "context"

// LineFunc receives one line of a streamed process output.
type LineFunc func(line string)

// Executor defines the interface for executing external commands
type Executor interface {
	// Execute runs a command to completion and returns its stdout.
	Execute(ctx context.Context, name string, args ...string) (string, error)
	// ExecuteInDir is Execute with a working directory.
	ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error)
	// Stream runs a command and hands every stdout and stderr line to onLine while it runs.
	// Lines are split on both '\n' and '\r' so in-place progress updates are seen.
	Stream(ctx context.Context, name string, args []string, onLine LineFunc) error
	// LookPath resolves a binary on PATH.
	LookPath(name string) (string, error)
}
