package scheduler

import (
	"fmt"

	"github.com/kingrea/rayforge/internal/workflow/resolver"
)

// Selector exposes the minimal contract the engine needs to pick the next
// target to run.
type Selector interface {
	Next(Request) (Decision, error)
}

// Scheduler implements Selector on top of a dependency resolver. Targets run
// strictly one at a time, in queue order, and the first failure stops the
// chain.
type Scheduler struct {
	resolver *resolver.Resolver
}

// New wires a Scheduler to a resolver snapshot.
func New(res *resolver.Resolver) (*Scheduler, error) {
	if res == nil {
		return nil, fmt.Errorf("workflow: scheduler requires a resolver")
	}
	return &Scheduler{resolver: res}, nil
}

// Request captures the invocation plan and the current runtime state.
type Request struct {
	// Queue lists target IDs in execution order, as produced by the resolver.
	Queue []string
	// Running lists targets currently executing.
	Running []string
	// IgnoreDependencies treats every queued target as runnable once the
	// targets before it have finished.
	IgnoreDependencies bool
	// Cancelled stops the chain as if a target had failed.
	Cancelled bool
}

// Decision describes the scheduler's choice.
type Decision struct {
	// Node is the next target to run, nil when nothing can run now.
	Node *resolver.Node
	// Skipped explains why other queued targets were not chosen.
	Skipped map[string]SkipReason
	// Done is true once every queued target reached a terminal state or can
	// never run.
	Done bool
	// Failed names the target that stopped the chain, if any.
	Failed string
}

// SkipReason explains why a node was not chosen.
type SkipReason struct {
	Reason SkipReasonCode `json:"reason"`
	Detail string         `json:"detail,omitempty"`
}

// SkipReasonCode enumerates scheduler skip reasons.
type SkipReasonCode string

const (
	SkipReasonNotReady       SkipReasonCode = "not-ready"
	SkipReasonActive         SkipReasonCode = "already-running"
	SkipReasonBusy           SkipReasonCode = "busy"
	SkipReasonCompleted      SkipReasonCode = "completed"
	SkipReasonUpstreamFailed SkipReasonCode = "upstream-failed"
	SkipReasonCancelled      SkipReasonCode = "cancelled"
)

// Next returns the next runnable node constrained by the request.
func (s *Scheduler) Next(req Request) (Decision, error) {
	nodes := make([]*resolver.Node, 0, len(req.Queue))
	for _, id := range req.Queue {
		node, ok := s.resolver.Node(id)
		if !ok {
			return Decision{}, fmt.Errorf("workflow: scheduler queue references unknown target %s", id)
		}
		nodes = append(nodes, node)
	}
	running := req.runningSet()
	result := Decision{}
	for _, node := range nodes {
		if node.State == resolver.NodeStateFailed || node.State == resolver.NodeStateError {
			result.Failed = node.ID
			break
		}
	}
	busy := len(running) > 0
	for _, node := range nodes {
		switch {
		case node.State == resolver.NodeStateComplete:
			result.addSkip(node.ID, SkipReason{Reason: SkipReasonCompleted})
			continue
		case node.State.Terminal():
			continue
		}
		if _, active := running[node.ID]; active || node.State == resolver.NodeStateRunning {
			result.addSkip(node.ID, SkipReason{Reason: SkipReasonActive, Detail: "target already running"})
			continue
		}
		if result.Failed != "" {
			result.addSkip(node.ID, SkipReason{Reason: SkipReasonUpstreamFailed, Detail: fmt.Sprintf("%s failed", result.Failed)})
			continue
		}
		if req.Cancelled {
			result.addSkip(node.ID, SkipReason{Reason: SkipReasonCancelled, Detail: "run interrupted"})
			continue
		}
		if busy || result.Node != nil {
			result.addSkip(node.ID, SkipReason{Reason: SkipReasonBusy, Detail: "waiting for the current target"})
			continue
		}
		if !req.IgnoreDependencies && node.State != resolver.NodeStateReady {
			result.addSkip(node.ID, SkipReason{Reason: SkipReasonNotReady, Detail: string(node.State)})
			continue
		}
		result.Node = node
	}
	if result.Node == nil && !busy {
		result.Done = true
	}
	return result, nil
}

func (req Request) runningSet() map[string]struct{} {
	if len(req.Running) == 0 {
		return map[string]struct{}{}
	}
	set := make(map[string]struct{}, len(req.Running))
	for _, id := range req.Running {
		if id == "" {
			continue
		}
		set[id] = struct{}{}
	}
	return set
}

func (d *Decision) addSkip(id string, reason SkipReason) {
	if id == "" {
		return
	}
	if d.Skipped == nil {
		d.Skipped = make(map[string]SkipReason)
	}
	d.Skipped[id] = reason
}
