package clean

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kingrea/rayforge/internal/action"
	"github.com/kingrea/rayforge/internal/artifact"
)

const (
	// Kind is the action kind for removing generated artifacts.
	Kind    = "clean"
	version = "1.0.0"
)

// Action deletes generated files. Missing files are not an error, so clean is
// always safe to repeat.
type Action struct {
	action.Base
	refs []artifact.ArtifactRef
}

// Register installs the clean action factory.
func Register(reg *action.Registry) {
	if reg == nil {
		return
	}
	reg.MustRegister(Kind, func(cfg action.Config) (action.Action, error) {
		return New(cfg)
	})
}

// New parses cfg. `patterns` lists globs matched in the project directory
// (not recursively) and `paths` lists files or directories removed whole.
// Either may name a registered artifact id.
func New(cfg action.Config) (*Action, error) {
	patterns, err := cfg.Strings("patterns")
	if err != nil {
		return nil, err
	}
	paths, err := cfg.Strings("paths")
	if err != nil {
		return nil, err
	}
	var refs []artifact.ArtifactRef
	for _, value := range append(patterns, paths...) {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if filepath.IsAbs(value) {
			return nil, fmt.Errorf("clean: %s must be relative to the project", value)
		}
		ref := artifact.Resolve(value)
		if err := ref.Validate(); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("clean: patterns or paths is required")
	}
	return &Action{
		Base: action.NewBase(action.Info{
			ID:          Kind,
			Name:        "Clean",
			Description: "Removes rendered images and build output.",
			Version:     version,
		}),
		refs: refs,
	}, nil
}

// Run removes every configured artifact.
func (a *Action) Run(ctx context.Context, rc *action.RunContext) (action.Result, error) {
	if rc.Artifacts == nil {
		return action.Failed(fmt.Errorf("clean: artifact store is required"))
	}
	var removed []string
	for _, ref := range a.refs {
		if err := ctx.Err(); err != nil {
			return action.Result{Status: action.StatusCancelled, Message: err.Error()}, err
		}
		paths, err := rc.Artifacts.Remove(ref)
		removed = append(removed, paths...)
		if err != nil {
			return action.Failed(fmt.Errorf("clean %s: %w", ref.Pattern, err))
		}
	}
	for _, path := range removed {
		rc.Log().WithField("path", path).Debug("removed")
	}
	if len(removed) == 0 {
		return action.Result{Status: action.StatusNoOp, Message: "nothing to remove"}, nil
	}
	return action.Completed("removed %d %s", len(removed), plural(len(removed), "path", "paths")), nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
