package group

import (
	"context"

	"github.com/kingrea/rayforge/internal/action"
)

const (
	// Kind marks aggregate targets that only exist to pull in dependencies.
	Kind    = "group"
	version = "1.0.0"
)

// Action does nothing itself. A target like `default` uses it to name a set
// of targets that run through its dependencies.
type Action struct {
	action.Base
	message string
}

// Register installs the group action factory.
func Register(reg *action.Registry) {
	if reg == nil {
		return
	}
	reg.MustRegister(Kind, func(cfg action.Config) (action.Action, error) {
		return New(cfg)
	})
}

// New builds a group action. An optional `message` is reported on success.
func New(cfg action.Config) (*Action, error) {
	message, err := cfg.String("message")
	if err != nil {
		return nil, err
	}
	return &Action{
		Base: action.NewBase(action.Info{
			ID:          Kind,
			Name:        "Group",
			Description: "Aggregates dependencies without running anything.",
			Version:     version,
		}),
		message: message,
	}, nil
}

func (a *Action) Run(ctx context.Context, _ *action.RunContext) (action.Result, error) {
	if err := ctx.Err(); err != nil {
		return action.Result{Status: action.StatusCancelled, Message: err.Error()}, err
	}
	return action.Result{Status: action.StatusNoOp, Message: a.message}, nil
}
