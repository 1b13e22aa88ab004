package cli

import (
	"fmt"
	"io"

	"github.com/kingrea/rayforge/internal/action"
	"github.com/kingrea/rayforge/internal/actions"
	"github.com/kingrea/rayforge/internal/config"
	"github.com/kingrea/rayforge/internal/logbook"
	"github.com/kingrea/rayforge/internal/logging"
	"github.com/kingrea/rayforge/internal/workflow"
	"github.com/kingrea/rayforge/internal/workflow/engine"
	"github.com/kingrea/rayforge/plugins"
)

// session bundles everything one invocation needs: settings, logs, the
// target graph (project file plus plugins) and an engine.
type session struct {
	cfg      *config.Config
	logger   *logging.Logger
	history  *logbook.Logbook
	registry *action.Registry
	def      workflow.Definition
	fromFile bool
	plugins  []plugins.SourceFile
	engine   *engine.Engine
}

// openSession loads configuration for the project and prepares the engine.
// console receives warnings from the structured logger; nil keeps them in the
// log file only.
func openSession(opts *rootOptions, console io.Writer) (*session, error) {
	cfg, err := config.Load(opts.dir)
	if err != nil {
		return nil, err
	}
	opts.applyOverrides(cfg)
	if err := config.InitStateDir(cfg.ProjectDir); err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Layout.LogPath(), cfg.Settings.Log, console)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, logger: logger}
	if err := s.load(); err != nil {
		_ = logger.Close()
		return nil, err
	}
	return s, nil
}

func (s *session) load() error {
	history, err := logbook.New(s.cfg.Layout.HistoryPath())
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	s.history = history

	s.registry = actions.NewRegistry(actions.Options{
		Viewer:   s.cfg.Settings.Viewer,
		Debounce: s.cfg.Settings.Debounce,
	})
	def, found, err := workflow.LoadProjectDefinition(s.cfg.ProjectDir, s.cfg.TargetFile())
	if err != nil {
		return err
	}
	s.fromFile = found
	def, files, err := plugins.Install(s.registry, def, s.cfg.Layout.TargetsDir())
	if err != nil {
		return err
	}
	s.def = def
	s.plugins = files

	eng, err := engine.New(s.registry, engine.NewRepository(s.cfg.Layout))
	if err != nil {
		return err
	}
	s.engine = eng

	fields := map[string]any{"definition": def.ID, "targets": len(def.Targets)}
	if found {
		fields["file"] = s.cfg.TargetFile()
	}
	if len(files) > 0 {
		fields["plugins"] = len(files)
	}
	s.logger.WithFields(fields).Debug("session ready")
	return nil
}

// runContext builds the root run context for the session.
func (s *session) runContext(stdout, stderr io.Writer) *action.RunContext {
	rc := action.NewRunContext(s.cfg.ProjectDir, s.logger.Logger, s.history)
	rc.Env = s.def.Env
	rc.Stdout = stdout
	rc.Stderr = stderr
	return rc
}

func (s *session) Close() error {
	if s == nil {
		return nil
	}
	return s.logger.Close()
}
