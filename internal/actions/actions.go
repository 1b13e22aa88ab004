// Package actions wires the built-in action kinds into a registry.
package actions

import (
	"time"

	"github.com/kingrea/rayforge/internal/action"
	"github.com/kingrea/rayforge/internal/actions/clean"
	"github.com/kingrea/rayforge/internal/actions/command"
	"github.com/kingrea/rayforge/internal/actions/group"
	"github.com/kingrea/rayforge/internal/actions/viewer"
	"github.com/kingrea/rayforge/internal/actions/watch"
)

// Options carries process-wide defaults for built-in actions.
type Options struct {
	// Viewer replaces the OS default image viewer.
	Viewer string
	// Debounce replaces the default watch debounce.
	Debounce time.Duration
}

// RegisterBuiltins installs all of the built-in action factories into the
// provided registry.
func RegisterBuiltins(reg *action.Registry, opts Options) {
	if reg == nil {
		return
	}
	command.Register(reg)
	clean.Register(reg)
	viewer.Register(reg, opts.Viewer)
	watch.Register(reg, opts.Debounce)
	group.Register(reg)
}

// NewRegistry returns a registry holding every built-in action.
func NewRegistry(opts Options) *action.Registry {
	reg := action.NewRegistry()
	RegisterBuiltins(reg, opts)
	return reg
}
