package action

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kingrea/rayforge/internal/artifact"
	"github.com/kingrea/rayforge/internal/logbook"
)

// InvokeRequest asks the engine to run targets from inside an action.
type InvokeRequest struct {
	Targets []string
	// SkipDependencies runs only the named targets.
	SkipDependencies bool
}

// InvokeFunc re-enters the engine. Used by actions that drive other targets.
type InvokeFunc func(ctx context.Context, req InvokeRequest) error

// RunContext carries shared runtime dependencies into every action.
type RunContext struct {
	ProjectDir string
	Target     string
	RunID      string
	Env        map[string]string
	Stdout     io.Writer
	Stderr     io.Writer
	Stdin      io.Reader
	Artifacts  *artifact.Store
	Logger     logrus.FieldLogger
	History    *logbook.Logbook
	Reporter   Reporter
	Invoke     InvokeFunc
}

// NewRunContext builds a RunContext for projectDir with process stdio and a
// fresh artifact store.
func NewRunContext(projectDir string, logger logrus.FieldLogger, history *logbook.Logbook) *RunContext {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RunContext{
		ProjectDir: projectDir,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		Stdin:      os.Stdin,
		Artifacts:  artifact.NewStore(projectDir),
		Logger:     logger,
		History:    history,
		Reporter:   Discard,
	}
}

// ForTarget returns a copy scoped to one target run.
func (rc *RunContext) ForTarget(target, runID string) *RunContext {
	clone := *rc
	clone.Target = target
	clone.RunID = runID
	clone.Logger = rc.log().WithFields(logrus.Fields{"target": target, "run": runID})
	return &clone
}

// WithReporter returns a copy that reports to r.
func (rc *RunContext) WithReporter(r Reporter) *RunContext {
	clone := *rc
	clone.Reporter = r
	return &clone
}

// Emit reports ev, filling in target and run identifiers.
func (rc *RunContext) Emit(ev Event) {
	if rc == nil || rc.Reporter == nil {
		return
	}
	if ev.Target == "" {
		ev.Target = rc.Target
	}
	if ev.RunID == "" {
		ev.RunID = rc.RunID
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	rc.Reporter.Report(ev)
}

// Log returns the context logger, never nil.
func (rc *RunContext) Log() logrus.FieldLogger {
	return rc.log()
}

func (rc *RunContext) log() logrus.FieldLogger {
	if rc == nil || rc.Logger == nil {
		return logrus.StandardLogger()
	}
	return rc.Logger
}
