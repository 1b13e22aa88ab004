package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/kingrea/rayforge/internal/action"
	"github.com/kingrea/rayforge/internal/workflow"
	"github.com/kingrea/rayforge/internal/workflow/resolver"
	"github.com/kingrea/rayforge/internal/workflow/scheduler"
)

// ErrNoTargets is returned when neither the request nor the definition names
// anything to run.
var ErrNoTargets = errors.New("workflow engine: no targets requested")

// ErrRecursiveInvoke is returned when an action tries to invoke a target that
// is already on the invocation stack.
var ErrRecursiveInvoke = errors.New("workflow engine: recursive target invocation")

// Engine coordinates the resolver and scheduler while persisting run state.
type Engine struct {
	registry *action.Registry
	repo     StateStore
	clock    func() time.Time
	newID    func() string
	reporter action.Reporter
}

// Option customizes the engine instance.
type Option func(*Engine)

// WithClock injects a deterministic clock (primarily for tests).
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithIDGenerator overrides run id generation.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// WithReporter adds a reporter that receives events from every run in
// addition to the run context's own reporter.
func WithReporter(r action.Reporter) Option {
	return func(e *Engine) {
		e.reporter = r
	}
}

// New wires an engine to the action registry and persistence store.
func New(registry *action.Registry, repo StateStore, opts ...Option) (*Engine, error) {
	if registry == nil {
		return nil, fmt.Errorf("workflow engine: action registry is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("workflow engine: state store is required")
	}
	engine := &Engine{
		registry: registry,
		repo:     repo,
		clock:    time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine, nil
}

// RunRequest names the targets for one invocation.
type RunRequest struct {
	Definition workflow.Definition
	// Targets to run. Empty falls back to the definition's default list.
	Targets []string
	// SkipDependencies runs only the named targets.
	SkipDependencies bool
}

// Plan returns the execution order for req without running anything.
func (e *Engine) Plan(req RunRequest) ([]string, error) {
	res, err := resolver.New(req.Definition, e.registry)
	if err != nil {
		return nil, err
	}
	_, queue, err := planQueue(res, req)
	return queue, err
}

// Run executes the requested targets in dependency order, one at a time. The
// first target that fails stops the chain; every target after it is recorded
// as skipped. The returned error is the failing target's error, so callers can
// derive an exit code with action.ExitCode.
func (e *Engine) Run(ctx context.Context, rc *action.RunContext, req RunRequest) (State, error) {
	if rc == nil {
		return State{}, fmt.Errorf("workflow engine: run context is required")
	}
	res, err := resolver.New(req.Definition, e.registry)
	if err != nil {
		return State{}, err
	}
	requested, queue, err := planQueue(res, req)
	if err != nil {
		return State{}, err
	}
	if err := res.Refresh(rc.Artifacts); err != nil {
		return State{}, err
	}
	sched, err := scheduler.New(res)
	if err != nil {
		return State{}, err
	}

	runID := e.newID()
	base := rc.WithReporter(action.Multi(rc.Reporter, e.reporter))
	base.RunID = runID
	base.Invoke = e.invoker(rc, req.Definition)
	log := base.Log().WithField("run", runID)

	state := State{
		RunID:        runID,
		DefinitionID: res.Definition().ID,
		Requested:    requested,
		Queue:        queue,
		Status:       RunStatusRunning,
		Runs:         map[string]TargetRun{},
		StartedAt:    e.now(),
	}
	log.WithField("queue", queue).Debug("run started")
	base.Emit(action.Event{Kind: action.EventRunStarted, Message: fmt.Sprintf("%v", queue)})

	var runErr error
	var last scheduler.Decision
	for {
		decision, err := sched.Next(scheduler.Request{
			Queue:              queue,
			IgnoreDependencies: req.SkipDependencies,
			Cancelled:          ctx.Err() != nil,
		})
		if err != nil {
			return State{}, err
		}
		last = decision
		if decision.Done || decision.Node == nil {
			break
		}
		node := decision.Node
		run, err := e.runTarget(ctx, base, res, node)
		state.Runs[node.ID] = run
		if err != nil {
			runErr = err
		}
	}
	if runErr == nil && ctx.Err() != nil && len(state.Runs) < len(queue) {
		runErr = fmt.Errorf("run interrupted: %w", ctx.Err())
	}

	state.Skipped = e.recordSkipped(base, res, queue, state.Runs, last.Skipped)
	state.Nodes = summarizeNodes(res, queue)
	state.FinishedAt = e.now()
	state.ExitCode = action.ExitCode(runErr)
	state.Status, state.StatusReason = deriveStatus(state, runErr)

	base.Emit(action.Event{
		Kind:     action.EventRunFinished,
		Status:   runStatusToAction(state.Status),
		Message:  state.StatusReason,
		Err:      runErr,
		Duration: state.FinishedAt.Sub(state.StartedAt),
	})
	// Nested runs belong to the outer run's state.
	if len(frames(ctx)) == 0 {
		if err := e.repo.Save(state); err != nil {
			log.WithError(err).Warn("persist run state")
		}
	}
	if runErr != nil {
		log.WithError(runErr).Debug("run stopped")
	}
	return state, runErr
}

// View returns the last persisted run.
func (e *Engine) View() (State, error) {
	return e.repo.Load()
}

func (e *Engine) runTarget(ctx context.Context, base *action.RunContext, res *resolver.Resolver, node *resolver.Node) (TargetRun, error) {
	trc := base.ForTarget(node.ID, base.RunID)
	res.MarkRunning(node.ID)
	started := e.now()
	trc.Emit(action.Event{Kind: action.EventTargetStarted, Message: pickName(node)})
	trc.Log().Debug("target started")

	result, err := node.Action.Run(withFrame(ctx, node.ID), trc)
	if err == nil && result.Status != "" && !result.Status.Succeeded() {
		err = fmt.Errorf("%s: %s", node.ID, result.Message)
	}
	finished := e.now()
	run := TargetRun{
		Status:     result.Status,
		Message:    result.Message,
		StartedAt:  started,
		FinishedAt: finished,
		Duration:   finished.Sub(started),
	}
	switch {
	case err != nil && ctx.Err() != nil:
		err = fmt.Errorf("target %s interrupted: %w", node.ID, ctx.Err())
		run.Status = action.StatusCancelled
		res.MarkFailed(node.ID, err)
	case err != nil:
		run.Status = action.StatusFailed
		res.MarkFailed(node.ID, err)
	default:
		if run.Status == "" {
			run.Status = action.StatusCompleted
		}
		res.MarkComplete(node.ID)
	}
	if err != nil {
		run.Error = err.Error()
		run.ExitCode = action.ExitCode(err)
		if run.Message == "" {
			run.Message = err.Error()
		}
	}
	trc.Emit(action.Event{
		Kind:     action.EventTargetFinished,
		Status:   run.Status,
		Message:  run.Message,
		Err:      err,
		Duration: run.Duration,
	})
	if trc.History != nil {
		trc.History.Record(base.RunID, node.ID, string(run.Status), run.Duration, run.Error)
	}
	entry := trc.Log().WithField("status", run.Status).WithField("elapsed", run.Duration.Round(time.Millisecond))
	switch {
	case run.Status == action.StatusCancelled:
		entry.Warn("target interrupted")
	case err != nil:
		entry.WithError(err).Error("target failed")
	default:
		entry.Info("target finished")
	}
	return run, err
}

func (e *Engine) recordSkipped(base *action.RunContext, res *resolver.Resolver, queue []string, runs map[string]TargetRun, reasons map[string]scheduler.SkipReason) map[string]scheduler.SkipReason {
	var skipped map[string]scheduler.SkipReason
	for _, id := range queue {
		if _, ran := runs[id]; ran {
			continue
		}
		reason, ok := reasons[id]
		if !ok {
			reason = scheduler.SkipReason{Reason: scheduler.SkipReasonNotReady}
		}
		if skipped == nil {
			skipped = map[string]scheduler.SkipReason{}
		}
		skipped[id] = reason
		res.MarkSkipped(id)
		runs[id] = TargetRun{Status: StatusSkipped, Message: reason.Detail}
		base.Emit(action.Event{Kind: action.EventTargetSkipped, Target: id, Status: StatusSkipped, Message: reason.Detail})
		if base.History != nil {
			base.History.Record(base.RunID, id, string(StatusSkipped), 0, string(reason.Reason))
		}
	}
	return skipped
}

// invoker lets actions re-enter the engine with the same definition. The
// invocation stack travels on the context so a target cannot invoke itself
// directly or through another target.
func (e *Engine) invoker(caller *action.RunContext, def workflow.Definition) action.InvokeFunc {
	return func(ctx context.Context, req action.InvokeRequest) error {
		stack := frames(ctx)
		for _, target := range req.Targets {
			if slices.Contains(stack, target) {
				return fmt.Errorf("%w: %s", ErrRecursiveInvoke, target)
			}
		}
		parent := *caller
		_, err := e.Run(ctx, &parent, RunRequest{
			Definition:       def,
			Targets:          req.Targets,
			SkipDependencies: req.SkipDependencies,
		})
		return err
	}
}

func planQueue(res *resolver.Resolver, req RunRequest) ([]string, []string, error) {
	targets := cloneStrings(req.Targets)
	if len(targets) == 0 {
		targets = res.Definition().Default
	}
	if len(targets) == 0 {
		return nil, nil, ErrNoTargets
	}
	var (
		nodes []*resolver.Node
		err   error
	)
	if req.SkipDependencies {
		nodes, err = res.Only(targets...)
	} else {
		nodes, err = res.Queue(targets...)
	}
	if err != nil {
		return nil, nil, err
	}
	queue := make([]string, len(nodes))
	for i, node := range nodes {
		queue[i] = node.ID
	}
	return cloneStrings(targets), queue, nil
}

func deriveStatus(state State, runErr error) (RunStatus, string) {
	failed := state.Failed()
	switch {
	case runErr == nil:
		return RunStatusComplete, ""
	case errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded):
		if failed != "" {
			return RunStatusCancelled, fmt.Sprintf("%s interrupted", failed)
		}
		return RunStatusCancelled, "interrupted"
	case failed != "":
		return RunStatusFailed, fmt.Sprintf("%s failed", failed)
	default:
		return RunStatusFailed, runErr.Error()
	}
}

func runStatusToAction(status RunStatus) action.Status {
	switch status {
	case RunStatusComplete:
		return action.StatusCompleted
	case RunStatusCancelled:
		return action.StatusCancelled
	default:
		return action.StatusFailed
	}
}

func (e *Engine) now() time.Time {
	if e.clock == nil {
		return time.Now()
	}
	return e.clock()
}

type frameKey struct{}

func withFrame(ctx context.Context, target string) context.Context {
	stack := append(slices.Clone(frames(ctx)), target)
	return context.WithValue(ctx, frameKey{}, stack)
}

func frames(ctx context.Context) []string {
	stack, _ := ctx.Value(frameKey{}).([]string)
	return stack
}
