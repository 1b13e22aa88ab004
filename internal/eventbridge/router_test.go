package eventbridge

import (
	"testing"

	"github.com/kingrea/rayforge/internal/action"
)

func TestRouterBuffersAndFlushes(t *testing.T) {
	router := NewRouter(RouterWithSubscriberCapacity(4))
	first := action.Event{Kind: action.EventTargetStarted, Target: "build"}
	second := action.Event{Kind: action.EventTargetFinished, Target: "build", Status: action.StatusCompleted}
	router.Route(first)
	router.Route(second)
	sub := router.Subscribe(AllTargets)
	defer sub.Close()
	if got := <-sub.Events; got.Kind != first.Kind {
		t.Fatalf("expected first buffered event, got %s", got.Kind)
	}
	if got := <-sub.Events; got.Kind != second.Kind {
		t.Fatalf("expected second buffered event, got %s", got.Kind)
	}
}

func TestRouterFiltersByTarget(t *testing.T) {
	router := NewRouter()
	sub := router.Subscribe("test")
	defer sub.Close()
	router.Report(action.Event{Kind: action.EventTargetStarted, Target: "build"})
	router.Report(action.Event{Kind: action.EventTargetStarted, Target: "test"})
	select {
	case got := <-sub.Events:
		if got.Target != "test" {
			t.Fatalf("unexpected event for %s", got.Target)
		}
	default:
		t.Fatalf("expected delivery for test")
	}
	select {
	case got := <-sub.Events:
		t.Fatalf("unexpected extra event %+v", got)
	default:
	}
}

func TestRouterDropsOldestPreferredEventOnOverflow(t *testing.T) {
	router := NewRouter(RouterWithSubscriberCapacity(1))
	sub := router.Subscribe(AllTargets)
	defer sub.Close()
	change := action.Event{Kind: action.EventWatchChange, Message: "tuple.go"}
	cycle := action.Event{Kind: action.EventWatchCycle, Cycle: 2}
	router.Route(change)
	router.Route(cycle)
	if got := <-sub.Events; got.Kind != action.EventWatchCycle {
		t.Fatalf("expected cycle event to replace change, got %s", got.Kind)
	}
}

func TestRouterDropsIncomingWhenOldestCritical(t *testing.T) {
	router := NewRouter(RouterWithSubscriberCapacity(1))
	sub := router.Subscribe(AllTargets)
	defer sub.Close()
	finished := action.Event{Kind: action.EventRunFinished, Status: action.StatusFailed}
	change := action.Event{Kind: action.EventWatchChange, Message: "tuple.go"}
	router.Route(finished)
	router.Route(change)
	if got := <-sub.Events; got.Kind != action.EventRunFinished {
		t.Fatalf("expected run-finished to remain, got %s", got.Kind)
	}
	select {
	case <-sub.Events:
		t.Fatalf("unexpected extra event")
	default:
	}
}

func TestSubscriptionCloseStopsDelivery(t *testing.T) {
	router := NewRouter()
	sub := router.Subscribe(AllTargets)
	sub.Close()
	router.Route(action.Event{Kind: action.EventTargetStarted, Target: "clean"})
	if _, ok := <-sub.Events; ok {
		t.Fatalf("expected closed channel")
	}
}
