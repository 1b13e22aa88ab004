package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kingrea/rayforge/internal/action"
)

const (
	// Kind is the action kind for re-running targets on file changes.
	Kind    = "watch"
	version = "1.0.0"

	// DefaultDebounce groups bursts of editor writes into one cycle.
	DefaultDebounce = 200 * time.Millisecond
)

var (
	defaultPatterns = []string{"**/*.go"}
	defaultIgnore   = []string{".rayforge", ".git", "bin", "node_modules", "vendor"}
)

// Action watches the project tree and invokes its targets once at start and
// again after every batch of matching changes. A failing cycle is reported
// and the loop carries on; only cancellation stops it.
type Action struct {
	action.Base
	targets    []string
	patterns   []string
	ignore     map[string]struct{}
	debounce   time.Duration
	withDeps   bool
	runOnStart bool
}

// Register installs the watch action factory. debounce, when positive,
// replaces DefaultDebounce for targets that do not set one.
func Register(reg *action.Registry, debounce time.Duration) {
	if reg == nil {
		return
	}
	reg.MustRegister(Kind, func(cfg action.Config) (action.Action, error) {
		return New(cfg, debounce)
	})
}

// New parses cfg. Recognized keys: target (string or list, default "test"),
// paths (globs), ignore (directory names), debounce, dependencies (also run
// the targets' dependencies each cycle) and run_on_start (default true).
func New(cfg action.Config, debounce time.Duration) (*Action, error) {
	targets, err := cfg.Strings("target")
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		targets = []string{"test"}
	}
	patterns, err := cfg.Strings("paths")
	if err != nil {
		return nil, err
	}
	if len(patterns) == 0 {
		patterns = append([]string{}, defaultPatterns...)
	}
	if err := validatePatterns(patterns); err != nil {
		return nil, err
	}
	ignoreList, err := cfg.Strings("ignore")
	if err != nil {
		return nil, err
	}
	if len(ignoreList) == 0 {
		ignoreList = defaultIgnore
	}
	ignore := make(map[string]struct{}, len(ignoreList))
	for _, name := range ignoreList {
		ignore[strings.Trim(name, "/")] = struct{}{}
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	debounce, err = cfg.Duration("debounce", debounce)
	if err != nil {
		return nil, err
	}
	withDeps, err := cfg.Bool("dependencies")
	if err != nil {
		return nil, err
	}
	runOnStart := true
	if cfg.Has("run_on_start") {
		if runOnStart, err = cfg.Bool("run_on_start"); err != nil {
			return nil, err
		}
	}
	return &Action{
		Base: action.NewBase(action.Info{
			ID:          Kind,
			Name:        "Watch",
			Description: "Re-runs targets whenever matching source files change.",
			Version:     version,
		}),
		targets:    targets,
		patterns:   patterns,
		ignore:     ignore,
		debounce:   debounce,
		withDeps:   withDeps,
		runOnStart: runOnStart,
	}, nil
}

// Targets returns the targets each cycle invokes.
func (a *Action) Targets() []string {
	return append([]string{}, a.targets...)
}

// Debounce returns the quiet period that ends a batch of changes.
func (a *Action) Debounce() time.Duration {
	return a.debounce
}

// Run blocks until ctx is cancelled.
func (a *Action) Run(ctx context.Context, rc *action.RunContext) (action.Result, error) {
	if rc.Invoke == nil {
		return action.Failed(fmt.Errorf("watch: run context cannot invoke targets"))
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return action.Failed(fmt.Errorf("watch: %w", err))
	}
	defer watcher.Close()

	dirs, err := a.addTree(watcher, rc.ProjectDir, rc.ProjectDir)
	if err != nil {
		return action.Failed(err)
	}
	log := rc.Log().WithField("targets", a.targets)
	log.WithField("dirs", dirs).Info("watching for changes")
	rc.Emit(action.Event{
		Kind:    action.EventWatchStarted,
		Message: fmt.Sprintf("watching %s in %d directories", strings.Join(a.patterns, ", "), dirs),
	})

	cycles := 0
	failures := 0
	runCycle := func(reason string) {
		cycles++
		started := time.Now()
		err := rc.Invoke(ctx, action.InvokeRequest{Targets: a.targets, SkipDependencies: !a.withDeps})
		ev := action.Event{
			Kind:     action.EventWatchCycle,
			Cycle:    cycles,
			Status:   action.StatusCompleted,
			Message:  reason,
			Duration: time.Since(started),
		}
		switch {
		case err != nil && ctx.Err() != nil:
			ev.Status = action.StatusCancelled
		case err != nil:
			failures++
			ev.Status = action.StatusFailed
			ev.Err = err
			log.WithError(err).WithField("cycle", cycles).Warn("watch cycle failed")
		}
		rc.Emit(ev)
	}

	if a.runOnStart {
		runCycle("initial run")
	}

	pending := map[string]struct{}{}
	timer := time.NewTimer(a.debounce)
	timer.Stop()
	defer timer.Stop()
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return action.Result{
				Status:  action.StatusCancelled,
				Message: fmt.Sprintf("stopped after %d cycles (%d failed)", cycles, failures),
			}, ctx.Err()
		case err, ok := <-watcher.Errors:
			if !ok {
				return action.Failed(fmt.Errorf("watch: watcher closed"))
			}
			log.WithError(err).Warn("watch error")
		case ev, ok := <-watcher.Events:
			if !ok {
				return action.Failed(fmt.Errorf("watch: watcher closed"))
			}
			rel, relevant := a.relevant(rc.ProjectDir, ev)
			if ev.Has(fsnotify.Create) {
				if _, err := a.addTree(watcher, rc.ProjectDir, ev.Name); err != nil {
					log.WithError(err).Debug("watch new directory")
				}
			}
			if !relevant {
				continue
			}
			if _, seen := pending[rel]; !seen {
				rc.Emit(action.Event{Kind: action.EventWatchChange, Message: rel})
			}
			pending[rel] = struct{}{}
			timer.Reset(a.debounce)
			fire = timer.C
		case <-fire:
			fire = nil
			changed := sortedKeys(pending)
			pending = map[string]struct{}{}
			runCycle(summarize(changed))
		}
	}
}

func (a *Action) relevant(root string, ev fsnotify.Event) (string, bool) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return "", false
	}
	rel, err := filepath.Rel(root, ev.Name)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(rel, "../") || ignored(rel, a.ignore) {
		return "", false
	}
	for _, pattern := range a.patterns {
		if Match(pattern, rel) {
			return rel, true
		}
	}
	return "", false
}

// addTree watches dir and every directory below it that is not ignored. It
// returns the number of directories added. Paths that are not directories are
// skipped silently.
func (a *Action) addTree(watcher *fsnotify.Watcher, root, dir string) (int, error) {
	added := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root {
			rel, relErr := filepath.Rel(root, path)
			if relErr == nil && ignored(filepath.ToSlash(rel), a.ignore) {
				return fs.SkipDir
			}
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		added++
		return nil
	})
	return added, err
}

func summarize(changed []string) string {
	switch len(changed) {
	case 0:
		return "change detected"
	case 1:
		return changed[0] + " changed"
	default:
		return fmt.Sprintf("%s and %d more changed", changed[0], len(changed)-1)
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
