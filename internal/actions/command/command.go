package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/kingrea/rayforge/internal/action"
)

const (
	// Kind is the action kind targets use to run external commands.
	Kind    = "exec"
	version = "1.0.0"

	// Grace period between the interrupt and the kill once a run is
	// cancelled.
	waitDelay = 5 * time.Second
)

// Action runs one or more external commands in order. The first command that
// exits non-zero stops the rest.
type Action struct {
	action.Base
	commands [][]string
	dir      string
	env      map[string]string
	quiet    bool
}

// Register installs the exec action factory.
func Register(reg *action.Registry) {
	if reg == nil {
		return
	}
	reg.MustRegister(Kind, func(cfg action.Config) (action.Action, error) {
		return New(cfg)
	})
}

// New parses cfg. Recognized keys:
//
//	command:  string (shell-style quoting) or argv list
//	commands: list of strings or argv lists, run in order
//	dir:      working directory relative to the project
//	env:      extra environment variables
//	quiet:    do not echo commands before running them
func New(cfg action.Config) (*Action, error) {
	commands, err := parseCommands(cfg)
	if err != nil {
		return nil, err
	}
	if len(commands) == 0 {
		return nil, fmt.Errorf("exec: command or commands is required")
	}
	dir, err := cfg.String("dir")
	if err != nil {
		return nil, err
	}
	env, err := cfg.StringMap("env")
	if err != nil {
		return nil, err
	}
	quiet, err := cfg.Bool("quiet")
	if err != nil {
		return nil, err
	}
	return &Action{
		Base: action.NewBase(action.Info{
			ID:          Kind,
			Name:        "Run Command",
			Description: "Runs external commands and fails on the first non-zero exit.",
			Version:     version,
		}),
		commands: commands,
		dir:      dir,
		env:      env,
		quiet:    quiet,
	}, nil
}

// Commands returns the parsed argv lists.
func (a *Action) Commands() [][]string {
	out := make([][]string, len(a.commands))
	for i, argv := range a.commands {
		out[i] = append([]string{}, argv...)
	}
	return out
}

// Run executes each command with the project's stdio attached.
func (a *Action) Run(ctx context.Context, rc *action.RunContext) (action.Result, error) {
	dir := rc.ProjectDir
	if a.dir != "" {
		if filepath.IsAbs(a.dir) {
			dir = a.dir
		} else {
			dir = filepath.Join(rc.ProjectDir, a.dir)
		}
	}
	env := mergeEnv(os.Environ(), rc.Env, a.env)
	for _, argv := range a.commands {
		if err := ctx.Err(); err != nil {
			return action.Result{Status: action.StatusCancelled, Message: err.Error()}, err
		}
		line := shellquote.Join(argv...)
		if !a.quiet && rc.Stderr != nil {
			fmt.Fprintf(rc.Stderr, "$ %s\n", line)
		}
		rc.Log().WithField("command", line).WithField("dir", dir).Debug("exec")

		cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
		cmd.Dir = dir
		cmd.Env = env
		cmd.Stdin = rc.Stdin
		cmd.Stdout = writerOr(rc.Stdout)
		cmd.Stderr = writerOr(rc.Stderr)
		cmd.Cancel = func() error { return interrupt(cmd.Process) }
		cmd.WaitDelay = waitDelay
		if err := cmd.Run(); err != nil {
			return action.Failed(action.NewCommandError(rc.Target, argv, err))
		}
	}
	if len(a.commands) == 1 {
		return action.Completed("%s", shellquote.Join(a.commands[0]...)), nil
	}
	return action.Completed("ran %d commands", len(a.commands)), nil
}

func parseCommands(cfg action.Config) ([][]string, error) {
	var out [][]string
	if raw, ok := cfg["command"]; ok && raw != nil {
		argv, err := parseArgv("command", raw)
		if err != nil {
			return nil, err
		}
		out = append(out, argv)
	}
	raw, ok := cfg["commands"]
	if !ok || raw == nil {
		return out, nil
	}
	items, ok := raw.([]any)
	if !ok {
		if list, isList := raw.([]string); isList {
			for _, item := range list {
				items = append(items, item)
			}
		} else {
			return nil, fmt.Errorf("exec: commands must be a list, got %T", raw)
		}
	}
	for idx, item := range items {
		argv, err := parseArgv(fmt.Sprintf("commands[%d]", idx), item)
		if err != nil {
			return nil, err
		}
		out = append(out, argv)
	}
	return out, nil
}

func parseArgv(key string, raw any) ([]string, error) {
	var argv []string
	switch v := raw.(type) {
	case string:
		words, err := shellquote.Split(v)
		if err != nil {
			return nil, fmt.Errorf("exec: %s: %w", key, err)
		}
		argv = words
	case []string:
		argv = append([]string{}, v...)
	case []any:
		for idx, word := range v {
			s, ok := word.(string)
			if !ok {
				return nil, fmt.Errorf("exec: %s[%d]: expected string, got %T", key, idx, word)
			}
			argv = append(argv, s)
		}
	default:
		return nil, fmt.Errorf("exec: %s: expected string or list, got %T", key, raw)
	}
	if len(argv) == 0 || argv[0] == "" {
		return nil, fmt.Errorf("exec: %s is empty", key)
	}
	return argv, nil
}

// mergeEnv layers overrides onto base, later maps winning. Keys are applied
// in sorted order so the result is stable.
func mergeEnv(base []string, overrides ...map[string]string) []string {
	env := append([]string{}, base...)
	for _, layer := range overrides {
		keys := make([]string, 0, len(layer))
		for key := range layer {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			env = append(env, key+"="+layer[key])
		}
	}
	return env
}

func writerOr(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
