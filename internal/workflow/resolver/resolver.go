package resolver

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kingrea/rayforge/internal/action"
	"github.com/kingrea/rayforge/internal/artifact"
	"github.com/kingrea/rayforge/internal/workflow"
)

// ErrCycle is returned when the dependency graph is not acyclic.
var ErrCycle = errors.New("workflow: dependency cycle")

// NodeState represents the resolver's understanding of a target's progress
// within one invocation.
type NodeState string

const (
	NodeStateUnknown  NodeState = "unknown"
	NodeStatePending  NodeState = "pending"
	NodeStateReady    NodeState = "ready"
	NodeStateBlocked  NodeState = "blocked"
	NodeStateRunning  NodeState = "running"
	NodeStateComplete NodeState = "complete"
	NodeStateFailed   NodeState = "failed"
	NodeStateSkipped  NodeState = "skipped"
	NodeStateError    NodeState = "error"
)

// Terminal reports whether the state can no longer change during a run.
func (s NodeState) Terminal() bool {
	switch s {
	case NodeStateComplete, NodeStateFailed, NodeStateSkipped, NodeStateError:
		return true
	}
	return false
}

// Node captures a target plus its dependency metadata.
type Node struct {
	ID           string
	Ref          workflow.TargetRef
	Action       action.Action
	Dependencies []string
	Dependents   []string

	State     NodeState
	BlockedBy []string
	Err       error

	Artifacts map[string]ArtifactReport
}

// ArtifactReport captures the resolver's understanding of an output artifact.
type ArtifactReport struct {
	Ref     artifact.ArtifactRef
	State   artifact.State
	Matches []string
	Err     error
}

// Resolver builds and evaluates the target dependency graph.
type Resolver struct {
	definition workflow.Definition
	nodes      map[string]*Node
	orderedIDs []string
}

// New constructs a resolver for the provided definition. Actions are
// instantiated via the registry immediately so configuration errors surface
// before anything runs.
func New(def workflow.Definition, registry *action.Registry) (*Resolver, error) {
	if registry == nil {
		return nil, fmt.Errorf("workflow: action registry is required")
	}
	normalized, err := def.Normalized()
	if err != nil {
		return nil, err
	}
	nodes := make(map[string]*Node, len(normalized.Targets))
	ordered := make([]string, 0, len(normalized.Targets))
	for _, ref := range normalized.Targets {
		act, err := registry.Resolve(ref.ActionKind(), action.Config(ref.Config.Clone()))
		if err != nil {
			return nil, fmt.Errorf("workflow %s target %s: %w", normalized.ID, ref.ID, err)
		}
		nodes[ref.ID] = &Node{
			ID:           ref.ID,
			Ref:          ref,
			Action:       act,
			Dependencies: normalized.Dependencies(ref.ID),
			State:        NodeStatePending,
		}
		ordered = append(ordered, ref.ID)
	}
	for _, id := range ordered {
		node := nodes[id]
		for _, depID := range node.Dependencies {
			dep, ok := nodes[depID]
			if !ok {
				return nil, fmt.Errorf("workflow %s: dependency %s referenced by %s not declared", normalized.ID, depID, node.ID)
			}
			dep.Dependents = append(dep.Dependents, node.ID)
		}
	}
	for _, node := range nodes {
		if len(node.Dependents) > 1 {
			sort.Strings(node.Dependents)
		}
	}
	res := &Resolver{
		definition: normalized,
		nodes:      nodes,
		orderedIDs: ordered,
	}
	if _, err := res.Queue(); err != nil {
		return nil, err
	}
	return res, nil
}

// Definition returns a clone of the resolver's definition.
func (r *Resolver) Definition() workflow.Definition {
	return r.definition.Clone()
}

// Nodes returns the nodes in declaration order.
func (r *Resolver) Nodes() []*Node {
	out := make([]*Node, 0, len(r.orderedIDs))
	for _, id := range r.orderedIDs {
		if node, ok := r.nodes[id]; ok {
			out = append(out, node)
		}
	}
	return out
}

// Node retrieves a specific target node by ID.
func (r *Resolver) Node(id string) (*Node, bool) {
	node, ok := r.nodes[id]
	return node, ok
}

// Reset returns every node to pending so the graph can be run again.
func (r *Resolver) Reset() {
	for _, node := range r.nodes {
		node.State = NodeStatePending
		node.BlockedBy = nil
		node.Err = nil
	}
}

// Refresh evaluates declared outputs against the store and recomputes which
// non-terminal nodes are ready or blocked.
func (r *Resolver) Refresh(store *artifact.Store) error {
	if store == nil {
		return fmt.Errorf("workflow: artifact store is required")
	}
	for _, id := range r.orderedIDs {
		r.refreshArtifacts(store, r.nodes[id])
	}
	r.refreshReadiness()
	return nil
}

// MarkRunning records that a node started.
func (r *Resolver) MarkRunning(id string) {
	r.mark(id, NodeStateRunning, nil)
}

// MarkComplete records a successful node and unblocks its dependents.
func (r *Resolver) MarkComplete(id string) {
	r.mark(id, NodeStateComplete, nil)
}

// MarkFailed records a failed node.
func (r *Resolver) MarkFailed(id string, err error) {
	r.mark(id, NodeStateFailed, err)
}

// MarkSkipped records a node that will not run in this invocation.
func (r *Resolver) MarkSkipped(id string) {
	r.mark(id, NodeStateSkipped, nil)
}

func (r *Resolver) mark(id string, state NodeState, err error) {
	node, ok := r.nodes[id]
	if !ok {
		return
	}
	node.State = state
	node.Err = err
	node.BlockedBy = nil
	r.refreshReadiness()
}

func (r *Resolver) refreshReadiness() {
	for _, id := range r.orderedIDs {
		node := r.nodes[id]
		if node.State.Terminal() || node.State == NodeStateRunning {
			continue
		}
		blockers := r.blockers(node)
		if len(blockers) == 0 {
			node.State = NodeStateReady
			node.BlockedBy = nil
		} else {
			node.State = NodeStateBlocked
			node.BlockedBy = blockers
		}
	}
}

// Ready returns nodes that are runnable because all dependencies are complete.
func (r *Resolver) Ready() []*Node {
	var ready []*Node
	for _, id := range r.orderedIDs {
		node := r.nodes[id]
		if node.State == NodeStateReady {
			ready = append(ready, node)
		}
	}
	return ready
}

// Queue returns the targets that must run to satisfy the request, each at
// most once, dependencies before the targets that require them. Dependencies
// are visited depth first in declaration order. If no targets are provided,
// every target is considered.
func (r *Resolver) Queue(targets ...string) ([]*Node, error) {
	if len(targets) == 0 {
		targets = append([]string{}, r.orderedIDs...)
	}
	visited := make(map[string]bool, len(r.nodes))
	onStack := make(map[string]bool, len(r.nodes))
	var stack []string
	ordered := make([]*Node, 0, len(r.nodes))
	var visit func(string) error
	visit = func(id string) error {
		if visited[id] {
			return nil
		}
		node, ok := r.nodes[id]
		if !ok {
			return fmt.Errorf("workflow: unknown target %s", id)
		}
		if onStack[id] {
			return fmt.Errorf("%w: %s", ErrCycle, strings.Join(cyclePath(stack, id), " -> "))
		}
		onStack[id] = true
		stack = append(stack, id)
		for _, dep := range node.Dependencies {
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		onStack[id] = false
		visited[id] = true
		ordered = append(ordered, node)
		return nil
	}
	for _, id := range targets {
		if err := visit(id); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

// Only returns the named targets without their dependencies, de-duplicated,
// in request order.
func (r *Resolver) Only(targets ...string) ([]*Node, error) {
	seen := make(map[string]bool, len(targets))
	out := make([]*Node, 0, len(targets))
	for _, id := range targets {
		node, ok := r.nodes[id]
		if !ok {
			return nil, fmt.Errorf("workflow: unknown target %s", id)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, node)
	}
	return out, nil
}

func cyclePath(stack []string, repeat string) []string {
	for i, id := range stack {
		if id == repeat {
			path := append([]string{}, stack[i:]...)
			return append(path, repeat)
		}
	}
	return append(append([]string{}, stack...), repeat)
}

func (r *Resolver) blockers(node *Node) []string {
	if len(node.Dependencies) == 0 {
		return nil
	}
	blockers := make([]string, 0, len(node.Dependencies))
	for _, depID := range node.Dependencies {
		dep, ok := r.nodes[depID]
		if !ok || dep.State != NodeStateComplete {
			blockers = append(blockers, depID)
		}
	}
	if len(blockers) == 0 {
		return nil
	}
	return blockers
}

func (r *Resolver) refreshArtifacts(store *artifact.Store, node *Node) {
	if len(node.Ref.Outputs) == 0 {
		node.Artifacts = nil
		return
	}
	node.Artifacts = make(map[string]ArtifactReport, len(node.Ref.Outputs))
	for _, output := range node.Ref.Outputs {
		ref := artifact.Resolve(output)
		node.Artifacts[ref.ID] = CheckArtifact(store, ref)
	}
}

// CheckArtifact evaluates a single artifact.
func CheckArtifact(store *artifact.Store, ref artifact.ArtifactRef) ArtifactReport {
	report := ArtifactReport{Ref: ref, State: artifact.StateError}
	if store == nil {
		report.Err = fmt.Errorf("workflow: artifact store unavailable")
		return report
	}
	result, err := store.Check(ref)
	report.State = result.State
	report.Matches = result.Matches
	report.Err = err
	if report.Err == nil {
		report.Err = result.Err
	}
	return report
}
