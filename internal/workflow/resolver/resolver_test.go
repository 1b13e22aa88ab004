package resolver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kingrea/rayforge/internal/action"
	"github.com/kingrea/rayforge/internal/artifact"
	"github.com/kingrea/rayforge/internal/workflow"
)

func TestResolverRefreshSetsStates(t *testing.T) {
	resolver := buildResolver(t, chainDefinition())
	if err := resolver.Refresh(artifact.NewStore(t.TempDir())); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	clean := mustNode(t, resolver, "clean")
	build := mustNode(t, resolver, "build")
	if clean.State != NodeStateReady {
		t.Fatalf("expected clean ready, got %s", clean.State)
	}
	if build.State != NodeStateBlocked {
		t.Fatalf("expected build blocked, got %s", build.State)
	}
	if len(build.BlockedBy) != 1 || build.BlockedBy[0] != "clean" {
		t.Fatalf("build blocked by %+v", build.BlockedBy)
	}

	resolver.MarkComplete("clean")
	if build.State != NodeStateReady {
		t.Fatalf("expected build ready after clean completes, got %s", build.State)
	}
	ready := resolver.Ready()
	if len(ready) != 2 || ready[0].ID != "build" || ready[1].ID != "test" {
		t.Fatalf("unexpected ready set: %v", nodeIDs(ready))
	}
}

func TestResolverQueueOrdersDependenciesFirst(t *testing.T) {
	resolver := buildResolver(t, chainDefinition())
	queue, err := resolver.Queue("render")
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	if diff := cmp.Diff([]string{"clean", "build", "run", "render"}, nodeIDs(queue)); diff != "" {
		t.Fatalf("queue mismatch (-want +got):\n%s", diff)
	}
}

func TestResolverQueueDeduplicatesSharedDependencies(t *testing.T) {
	resolver := buildResolver(t, chainDefinition())
	queue, err := resolver.Queue("clean", "test", "render")
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	if diff := cmp.Diff([]string{"clean", "test", "build", "run", "render"}, nodeIDs(queue)); diff != "" {
		t.Fatalf("queue mismatch (-want +got):\n%s", diff)
	}
}

func TestResolverOnlySkipsDependencies(t *testing.T) {
	resolver := buildResolver(t, chainDefinition())
	queue, err := resolver.Only("test", "test")
	if err != nil {
		t.Fatalf("only: %v", err)
	}
	if diff := cmp.Diff([]string{"test"}, nodeIDs(queue)); diff != "" {
		t.Fatalf("only mismatch (-want +got):\n%s", diff)
	}
	if _, err := resolver.Only("missing"); err == nil {
		t.Fatalf("expected unknown target error")
	}
}

func TestResolverRejectsCycles(t *testing.T) {
	def := workflow.Definition{
		ID: "cyclic",
		Targets: []workflow.TargetRef{
			{ID: "a", Action: "stub", DependsOn: []string{"c"}},
			{ID: "b", Action: "stub", DependsOn: []string{"a"}},
			{ID: "c", Action: "stub", DependsOn: []string{"b"}},
		},
	}
	_, err := New(def, stubRegistry())
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("expected cycle error, got %v", err)
	}
	if !strings.Contains(err.Error(), "a -> c -> b -> a") {
		t.Fatalf("cycle path missing from %v", err)
	}
}

func TestResolverRejectsUnknownAction(t *testing.T) {
	def := workflow.Definition{
		ID:      "unknown",
		Targets: []workflow.TargetRef{{ID: "a", Action: "teleport"}},
	}
	if _, err := New(def, stubRegistry()); err == nil || !strings.Contains(err.Error(), "unknown kind teleport") {
		t.Fatalf("expected unknown action error, got %v", err)
	}
}

func TestResolverFailedDependencyKeepsDependentsBlocked(t *testing.T) {
	resolver := buildResolver(t, chainDefinition())
	if err := resolver.Refresh(artifact.NewStore(t.TempDir())); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	resolver.MarkComplete("clean")
	resolver.MarkFailed("build", errors.New("boom"))
	run := mustNode(t, resolver, "run")
	if run.State != NodeStateBlocked {
		t.Fatalf("expected run blocked, got %s", run.State)
	}
	build := mustNode(t, resolver, "build")
	if build.Err == nil || build.Err.Error() != "boom" {
		t.Fatalf("unexpected build error: %v", build.Err)
	}
	resolver.Reset()
	if mustNode(t, resolver, "build").State != NodeStatePending {
		t.Fatalf("reset should return nodes to pending")
	}
}

func TestResolverRefreshReportsOutputs(t *testing.T) {
	dir := t.TempDir()
	resolver := buildResolver(t, chainDefinition())
	store := artifact.NewStore(dir)
	if err := resolver.Refresh(store); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	report := mustNode(t, resolver, "run").Artifacts["canvas.ppm"]
	if report.State != artifact.StateMissing {
		t.Fatalf("expected missing canvas, got %s", report.State)
	}
	if err := os.WriteFile(filepath.Join(dir, "canvas.ppm"), []byte("P3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := resolver.Refresh(store); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	report = mustNode(t, resolver, "run").Artifacts["canvas.ppm"]
	if report.State != artifact.StateReady {
		t.Fatalf("expected ready canvas, got %s", report.State)
	}
}

func chainDefinition() workflow.Definition {
	return workflow.Definition{
		ID: "chain",
		Targets: []workflow.TargetRef{
			{ID: "clean", Action: "stub"},
			{ID: "build", Action: "stub", DependsOn: []string{"clean"}},
			{ID: "test", Action: "stub", DependsOn: []string{"clean"}},
			{ID: "run", Action: "stub", DependsOn: []string{"build"}, Outputs: []string{"canvas.ppm"}},
			{ID: "render", Action: "stub", DependsOn: []string{"run"}},
		},
	}
}

func buildResolver(t *testing.T, def workflow.Definition) *Resolver {
	t.Helper()
	res, err := New(def, stubRegistry())
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	return res
}

func stubRegistry() *action.Registry {
	reg := action.NewRegistry()
	reg.MustRegister("stub", func(action.Config) (action.Action, error) {
		return &stubAction{Base: action.NewBase(action.Info{ID: "stub", Name: "Stub", Version: "1"})}, nil
	})
	return reg
}

type stubAction struct {
	action.Base
}

func (s *stubAction) Run(context.Context, *action.RunContext) (action.Result, error) {
	return action.Result{Status: action.StatusCompleted}, nil
}

func mustNode(t *testing.T, res *Resolver, id string) *Node {
	t.Helper()
	node, ok := res.Node(id)
	if !ok {
		t.Fatalf("missing node %s", id)
	}
	return node
}

func nodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, node := range nodes {
		ids[i] = node.ID
	}
	return ids
}
