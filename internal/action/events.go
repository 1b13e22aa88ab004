package action

import (
	"sync"
	"time"
)

// EventKind enumerates progress notifications emitted while targets run.
type EventKind string

const (
	EventRunStarted     EventKind = "run-started"
	EventRunFinished    EventKind = "run-finished"
	EventTargetStarted  EventKind = "target-started"
	EventTargetFinished EventKind = "target-finished"
	EventTargetSkipped  EventKind = "target-skipped"
	EventWatchStarted   EventKind = "watch-started"
	EventWatchChange    EventKind = "watch-change"
	EventWatchCycle     EventKind = "watch-cycle"
)

// Event is one progress notification.
type Event struct {
	Kind     EventKind
	RunID    string
	Target   string
	Status   Status
	Message  string
	Err      error
	Duration time.Duration
	Cycle    int
	Time     time.Time
}

// Reporter receives progress events. Implementations must be safe for
// concurrent use.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Event)

// Report implements Reporter.
func (f ReporterFunc) Report(ev Event) {
	if f != nil {
		f(ev)
	}
}

// Discard drops every event.
var Discard Reporter = ReporterFunc(func(Event) {})

// Recorder keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Report implements Reporter.
func (r *Recorder) Report(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a snapshot of recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event{}, r.events...)
}

// Kinds returns the recorded event kinds for target, or all when target is empty.
func (r *Recorder) Kinds(target string) []EventKind {
	var out []EventKind
	for _, ev := range r.Events() {
		if target == "" || ev.Target == target {
			out = append(out, ev.Kind)
		}
	}
	return out
}

// Multi fans events out to several reporters.
func Multi(reporters ...Reporter) Reporter {
	var live []Reporter
	for _, r := range reporters {
		if r != nil {
			live = append(live, r)
		}
	}
	return ReporterFunc(func(ev Event) {
		for _, r := range live {
			r.Report(ev)
		}
	})
}
