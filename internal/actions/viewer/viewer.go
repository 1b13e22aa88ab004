package viewer

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/kballard/go-shellquote"

	"github.com/kingrea/rayforge/internal/action"
	"github.com/kingrea/rayforge/internal/artifact"
)

const (
	// Kind is the action kind for opening an artifact in a viewer.
	Kind    = "open"
	version = "1.0.0"
)

// ErrArtifactMissing is returned when there is nothing to open.
var ErrArtifactMissing = errors.New("artifact not found")

// Action launches the OS viewer for a rendered image. By default it returns
// as soon as the viewer process has started.
type Action struct {
	action.Base
	ref     artifact.ArtifactRef
	command []string
	wait    bool
}

// Register installs the open action factory. fallback, when non-empty,
// replaces the OS default viewer for targets that do not set one.
func Register(reg *action.Registry, fallback string) {
	if reg == nil {
		return
	}
	reg.MustRegister(Kind, func(cfg action.Config) (action.Action, error) {
		return New(cfg, fallback)
	})
}

// New parses cfg. `artifact` names the file to open (default canvas.ppm),
// `viewer` overrides the launcher command, and `wait` blocks until the viewer
// exits.
func New(cfg action.Config, fallback string) (*Action, error) {
	target, err := cfg.String("artifact")
	if err != nil {
		return nil, err
	}
	ref := artifact.CanvasPPM
	if target != "" {
		ref = artifact.Resolve(target)
	}
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	if ref.Kind == artifact.KindDirectory {
		return nil, fmt.Errorf("open: %s is a directory", ref.Pattern)
	}
	viewer, err := cfg.String("viewer")
	if err != nil {
		return nil, err
	}
	if viewer == "" {
		viewer = fallback
	}
	command := DefaultCommand(runtime.GOOS)
	if viewer != "" {
		command, err = shellquote.Split(viewer)
		if err != nil {
			return nil, fmt.Errorf("open: viewer: %w", err)
		}
		if len(command) == 0 {
			return nil, fmt.Errorf("open: viewer is empty")
		}
	}
	wait, err := cfg.Bool("wait")
	if err != nil {
		return nil, err
	}
	return &Action{
		Base: action.NewBase(action.Info{
			ID:          Kind,
			Name:        "Open Viewer",
			Description: "Opens a rendered image in the default viewer.",
			Version:     version,
		}),
		ref:     ref,
		command: command,
		wait:    wait,
	}, nil
}

// DefaultCommand returns the launcher that opens a file with its associated
// application on goos.
func DefaultCommand(goos string) []string {
	switch goos {
	case "darwin":
		return []string{"open"}
	case "windows":
		return []string{"cmd", "/c", "start", ""}
	default:
		return []string{"xdg-open"}
	}
}

// Command returns the launcher argv without the artifact path.
func (a *Action) Command() []string {
	return append([]string{}, a.command...)
}

// Run checks the artifact exists and hands it to the viewer.
func (a *Action) Run(ctx context.Context, rc *action.RunContext) (action.Result, error) {
	if rc.Artifacts == nil {
		return action.Failed(fmt.Errorf("open: artifact store is required"))
	}
	check, err := rc.Artifacts.Check(a.ref)
	if err != nil {
		return action.Failed(fmt.Errorf("open %s: %w", a.ref.Pattern, err))
	}
	if check.State != artifact.StateReady || len(check.Matches) == 0 {
		return action.Failed(fmt.Errorf("open %s: %w", a.ref.Pattern, ErrArtifactMissing))
	}
	argv := append(a.Command(), check.Matches...)
	rc.Log().WithField("command", shellquote.Join(argv...)).Debug("launching viewer")

	if a.wait {
		cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
		cmd.Dir = rc.ProjectDir
		cmd.Stdout = rc.Stdout
		cmd.Stderr = rc.Stderr
		if err := cmd.Run(); err != nil {
			return action.Failed(action.NewCommandError(rc.Target, argv, err))
		}
		return action.Completed("viewed %s", a.ref.Pattern), nil
	}

	// The viewer outlives the run, so it is not bound to ctx.
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = rc.ProjectDir
	if err := cmd.Start(); err != nil {
		return action.Failed(action.NewCommandError(rc.Target, argv, err))
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			rc.Log().WithError(err).Warn("viewer exited")
		}
	}()
	return action.Completed("opened %s", a.ref.Pattern), nil
}
