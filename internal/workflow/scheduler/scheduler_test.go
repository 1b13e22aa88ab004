package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/kingrea/rayforge/internal/action"
	"github.com/kingrea/rayforge/internal/artifact"
	"github.com/kingrea/rayforge/internal/workflow"
	"github.com/kingrea/rayforge/internal/workflow/resolver"
)

func TestSchedulerPicksFirstReadyTargetOnly(t *testing.T) {
	res, sched := buildScheduler(t)
	queue := queueIDs(t, res, "clean", "test", "render")

	decision, err := sched.Next(Request{Queue: queue})
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if decision.Node == nil || decision.Node.ID != "clean" {
		t.Fatalf("expected clean first, got %+v", decision.Node)
	}
	if decision.Done {
		t.Fatalf("decision should not be done")
	}
	if reason := decision.Skipped["test"].Reason; reason != SkipReasonBusy {
		t.Fatalf("expected test busy, got %s", reason)
	}

	res.MarkComplete("clean")
	decision, err = sched.Next(Request{Queue: queue})
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if decision.Node == nil || decision.Node.ID != "test" {
		t.Fatalf("expected test after clean, got %+v", decision.Node)
	}
	if decision.Skipped["clean"].Reason != SkipReasonCompleted {
		t.Fatalf("expected clean completed skip, got %+v", decision.Skipped["clean"])
	}
}

func TestSchedulerWaitsWhileTargetRuns(t *testing.T) {
	res, sched := buildScheduler(t)
	queue := queueIDs(t, res, "test")
	res.MarkRunning("clean")
	decision, err := sched.Next(Request{Queue: queue, Running: []string{"clean"}})
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if decision.Node != nil || decision.Done {
		t.Fatalf("expected no decision while clean runs, got %+v", decision)
	}
	if decision.Skipped["clean"].Reason != SkipReasonActive {
		t.Fatalf("expected clean already-running, got %+v", decision.Skipped["clean"])
	}
}

func TestSchedulerShortCircuitsAfterFailure(t *testing.T) {
	res, sched := buildScheduler(t)
	queue := queueIDs(t, res, "clean", "test", "render")
	res.MarkComplete("clean")
	res.MarkFailed("test", errors.New("exit status 1"))

	decision, err := sched.Next(Request{Queue: queue})
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if decision.Node != nil {
		t.Fatalf("expected nothing runnable after failure, got %s", decision.Node.ID)
	}
	if !decision.Done || decision.Failed != "test" {
		t.Fatalf("expected done with failed=test, got %+v", decision)
	}
	for _, id := range []string{"build", "run", "render"} {
		if decision.Skipped[id].Reason != SkipReasonUpstreamFailed {
			t.Fatalf("expected %s upstream-failed, got %+v", id, decision.Skipped[id])
		}
	}
}

func TestSchedulerCancelledStopsChain(t *testing.T) {
	res, sched := buildScheduler(t)
	queue := queueIDs(t, res, "render")
	decision, err := sched.Next(Request{Queue: queue, Cancelled: true})
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if decision.Node != nil || !decision.Done {
		t.Fatalf("expected cancelled run to be done, got %+v", decision)
	}
	if decision.Skipped["clean"].Reason != SkipReasonCancelled {
		t.Fatalf("expected clean cancelled, got %+v", decision.Skipped["clean"])
	}
}

func TestSchedulerIgnoreDependencies(t *testing.T) {
	_, sched := buildScheduler(t)
	queue := []string{"test"}
	decision, err := sched.Next(Request{Queue: queue})
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if decision.Node != nil {
		t.Fatalf("test should be blocked on clean without IgnoreDependencies")
	}
	decision, err = sched.Next(Request{Queue: queue, IgnoreDependencies: true})
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if decision.Node == nil || decision.Node.ID != "test" {
		t.Fatalf("expected test runnable, got %+v", decision.Node)
	}
}

func TestSchedulerRejectsUnknownQueueEntry(t *testing.T) {
	_, sched := buildScheduler(t)
	if _, err := sched.Next(Request{Queue: []string{"ghost"}}); err == nil {
		t.Fatalf("expected unknown target error")
	}
}

func buildScheduler(t *testing.T) (*resolver.Resolver, *Scheduler) {
	t.Helper()
	reg := action.NewRegistry()
	reg.MustRegister("stub", func(action.Config) (action.Action, error) {
		return &stubAction{Base: action.NewBase(action.Info{ID: "stub", Name: "Stub", Version: "1"})}, nil
	})
	def := workflow.Definition{
		ID: "test",
		Targets: []workflow.TargetRef{
			{ID: "clean", Action: "stub"},
			{ID: "build", Action: "stub", DependsOn: []string{"clean"}},
			{ID: "test", Action: "stub", DependsOn: []string{"clean"}},
			{ID: "run", Action: "stub", DependsOn: []string{"build"}},
			{ID: "render", Action: "stub", DependsOn: []string{"run"}},
		},
	}
	res, err := resolver.New(def, reg)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	if err := res.Refresh(artifact.NewStore(t.TempDir())); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	sched, err := New(res)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	return res, sched
}

func queueIDs(t *testing.T, res *resolver.Resolver, targets ...string) []string {
	t.Helper()
	nodes, err := res.Queue(targets...)
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	ids := make([]string, len(nodes))
	for i, node := range nodes {
		ids[i] = node.ID
	}
	return ids
}

type stubAction struct {
	action.Base
}

func (s *stubAction) Run(context.Context, *action.RunContext) (action.Result, error) {
	return action.Result{Status: action.StatusCompleted}, nil
}
