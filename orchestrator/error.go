package orchestrator

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
)

type customError struct {
	error
}

// ValidationError is a bad input caught before anything ran.
type ValidationError customError

// ToolError is an external tool run that ended in failure.
type ToolError customError

// ToolWarning is an external tool run that succeeded with warnings. It is
// reported but does not fail the run.
type ToolWarning customError

// CleanupError is a failure while removing temporary state after the real
// work already finished.
type CleanupError customError

func NewValidationError(format string, args ...interface{}) ValidationError {
	return ValidationError{errors.Errorf(format, args...)}
}

func NewToolError(format string, args ...interface{}) ToolError {
	return ToolError{errors.Errorf(format, args...)}
}

func NewToolWarning(format string, args ...interface{}) ToolWarning {
	return ToolWarning{errors.Errorf(format, args...)}
}

func NewCleanupError(format string, args ...interface{}) CleanupError {
	return CleanupError{errors.Errorf(format, args...)}
}

func ConvertErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return Error(errs)
}

func NewError(errs ...error) Error {
	if len(errs) == 0 {
		return nil
	}
	return Error(errs)
}

type Error []error

func (err Error) Error() string {
	return err.PrettyError(false)
}

func (err Error) PrettyError(includeStacktrace bool) string {
	if err.IsNil() {
		return ""
	}
	var buffer = bytes.NewBufferString("")

	fmt.Fprintf(buffer, "%d error%s occurred:\n", len(err), err.getPostFix())
	for index, err := range err {
		fmt.Fprintf(buffer, "error %d:\n", index+1)
		if includeStacktrace {
			fmt.Fprintf(buffer, "%+v\n", err)
		} else {
			fmt.Fprintf(buffer, "%+v\n", err.Error())
		}
	}
	return buffer.String()
}

func (err Error) getPostFix() string {
	errorPostfix := ""
	if len(err) > 1 {
		errorPostfix = "s"
	}
	return errorPostfix
}

// IsWarningsOnly reports whether every member is a ToolWarning, in which case
// the run still counts as a success.
func (err Error) IsWarningsOnly() bool {
	if err.IsNil() {
		return false
	}
	for _, e := range err {
		if _, ok := e.(ToolWarning); !ok {
			return false
		}
	}
	return true
}

func (err Error) ContainsCleanup() bool {
	for _, e := range err {
		if _, ok := e.(CleanupError); ok {
			return true
		}
	}
	return false
}

func (err Error) IsFatal() bool {
	return !err.IsNil() && !err.IsWarningsOnly()
}

func (err Error) IsNil() bool {
	return len(err) == 0
}

// ProcessError maps an aggregate error onto the process exit code, the
// message to print, and the stack trace text to stash away for debugging.
// External tool exit codes are never propagated raw; anything fatal exits 1.
func ProcessError(err Error) (int, string, string) {
	if err.IsNil() {
		return 0, "", ""
	}

	exitCode := 0
	if err.IsFatal() {
		exitCode = 1
	}

	return exitCode, err.PrettyError(false), err.PrettyError(true)
}
