package action

import (
	"context"
	"fmt"
)

// Info describes an action kind's identity and intent.
type Info struct {
	ID          string
	Name        string
	Description string
	Version     string
}

// Validate ensures the info block is well-formed.
func (i Info) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("action: id is required")
	}
	if i.Name == "" {
		return fmt.Errorf("action: name is required for %s", i.ID)
	}
	if i.Version == "" {
		return fmt.Errorf("action: version is required for %s", i.ID)
	}
	return nil
}

// Result captures the outcome of one action run.
type Result struct {
	Status  Status
	Message string
}

// Status enumerates action run outcomes.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusNoOp      Status = "no-op"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Succeeded reports whether the chain may continue after this status.
func (s Status) Succeeded() bool {
	return s == StatusCompleted || s == StatusNoOp
}

// Action is implemented by every unit of target work. Run blocks until the
// work finishes or ctx is cancelled.
type Action interface {
	Info() Info
	Run(ctx context.Context, rc *RunContext) (Result, error)
}

// Completed builds a successful result.
func Completed(format string, args ...any) Result {
	return Result{Status: StatusCompleted, Message: fmt.Sprintf(format, args...)}
}

// Failed builds a failed result paired with err.
func Failed(err error) (Result, error) {
	return Result{Status: StatusFailed, Message: err.Error()}, err
}
