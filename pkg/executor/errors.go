package executor

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ExitError reports a command that ran but exited unsuccessfully.
type ExitError struct {
	Command string
	Code    int
	Stderr  string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("command '%s' failed with exit code %d\nstderr: %s", e.Command, e.Code, e.Stderr)
	}
	return fmt.Sprintf("command '%s' failed with exit code %d", e.Command, e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode extracts the process exit code carried anywhere in err's chain.
func ExitCode(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
