package action

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrCommandFailed is matched by every CommandError.
var ErrCommandFailed = errors.New("external command failed")

// CommandError reports an external command that exited unsuccessfully.
type CommandError struct {
	Target   string
	Command  []string
	ExitCode int
	Exited   bool
	Err      error
}

func (e *CommandError) Error() string {
	line := strings.Join(e.Command, " ")
	if e.Exited {
		return fmt.Sprintf("%s: %s: `%s` exited with status %d", e.Target, ErrCommandFailed, line, e.ExitCode)
	}
	return fmt.Sprintf("%s: %s: `%s`: %v", e.Target, ErrCommandFailed, line, e.Err)
}

func (e *CommandError) Unwrap() []error {
	return []error{ErrCommandFailed, e.Err}
}

// NewCommandError wraps err from running argv for target.
func NewCommandError(target string, argv []string, err error) *CommandError {
	code := 1
	exited := false
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		code = exitErr.ExitCode()
		exited = true
	}
	return &CommandError{
		Target:   target,
		Command:  append([]string{}, argv...),
		ExitCode: code,
		Exited:   exited,
		Err:      err,
	}
}

// ExitCode maps an orchestration error to a process exit status: 0 for nil,
// the child's status for command failures, 130 for interrupts, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.ExitCode > 0 {
		return cmdErr.ExitCode
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}
	return 1
}
