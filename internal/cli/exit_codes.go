package cli

import "fmt"

// Exit codes for scripting and CI/CD integration. Pipelines branch on
// these: 1 means the fragments need fixing, anything higher means the
// run itself could not complete.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitFindings indicates the command completed but found problems
	// in the release notes: lint findings, a stale rendered file, or
	// unregistered contributors.
	ExitFindings = 1

	// ExitRuntimeFailure indicates the command could not complete:
	// unreadable files, network failures, forge errors.
	ExitRuntimeFailure = 2

	// ExitInvalidArguments indicates bad command-line arguments or
	// configuration.
	ExitInvalidArguments = 3

	// ExitMissingPrerequisites indicates required setup is absent:
	// no changes directory, no contributor registry, no git identity.
	ExitMissingPrerequisites = 4
)

// ExitError carries an explicit exit code through the cobra call chain.
// When Err is nil the command already reported the problem to the user
// and Execute stays silent.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Silent reports whether the error was already presented to the user.
func (e *ExitError) Silent() bool {
	return e.Err == nil
}

// NewExitError returns a silent ExitError for commands that print their
// own diagnostics.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}
