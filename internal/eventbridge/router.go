package eventbridge

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/kingrea/rayforge/internal/action"
)

const (
	defaultSubscriberCapacity = 100
	defaultBacklogLimit       = 50
)

// AllTargets subscribes to every event regardless of target.
const AllTargets = ""

// RouterOption customizes Router construction.
type RouterOption func(*Router)

// Router fans engine progress events out to subscribers with buffering and
// bounded channel semantics. It implements action.Reporter so it can be handed
// straight to the engine; the engine never blocks on a slow subscriber.
type Router struct {
	mu           sync.RWMutex
	subscribers  map[string]map[*subscriber]struct{}
	backlog      map[string][]action.Event
	channelSize  int
	backlogLimit int
	logger       logrus.FieldLogger
}

// Subscription represents an active subscription.
type Subscription struct {
	Events <-chan action.Event
	cancel func()
}

// Close terminates the subscription and closes Events.
func (s Subscription) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

// NewRouter constructs a router with sane defaults.
func NewRouter(opts ...RouterOption) *Router {
	r := &Router{
		subscribers:  map[string]map[*subscriber]struct{}{},
		backlog:      map[string][]action.Event{},
		channelSize:  defaultSubscriberCapacity,
		backlogLimit: defaultBacklogLimit,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// RouterWithLogger injects a logger for drop diagnostics.
func RouterWithLogger(logger logrus.FieldLogger) RouterOption {
	return func(r *Router) {
		r.logger = logger
	}
}

// RouterWithSubscriberCapacity overrides the buffered channel size per subscriber.
func RouterWithSubscriberCapacity(cap int) RouterOption {
	return func(r *Router) {
		if cap > 0 {
			r.channelSize = cap
		}
	}
}

// RouterWithBacklogLimit overrides the backlog size for pre-subscription buffering.
func RouterWithBacklogLimit(limit int) RouterOption {
	return func(r *Router) {
		if limit > 0 {
			r.backlogLimit = limit
		}
	}
}

// Subscribe registers for events of one target, or of every target when
// target is AllTargets. Events routed before anyone subscribed are replayed.
func (r *Router) Subscribe(target string) Subscription {
	topic := normalizeTopic(target)
	sub := newSubscriber(r.channelSize, r.logger)
	var backlog []action.Event
	r.mu.Lock()
	if r.subscribers[topic] == nil {
		r.subscribers[topic] = map[*subscriber]struct{}{}
	}
	r.subscribers[topic][sub] = struct{}{}
	if existing := r.backlog[topic]; len(existing) > 0 {
		backlog = append(backlog, existing...)
		delete(r.backlog, topic)
	}
	r.mu.Unlock()
	for _, event := range backlog {
		sub.deliver(event)
	}
	return Subscription{
		Events: sub.channel(),
		cancel: func() {
			r.removeSubscriber(topic, sub)
		},
	}
}

// Report implements action.Reporter.
func (r *Router) Report(event action.Event) {
	r.Route(event)
}

// Route delivers the event to subscribers or buffers it when no subscriber exists.
func (r *Router) Route(event action.Event) {
	topics := []string{AllTargets}
	if target := normalizeTopic(event.Target); target != AllTargets {
		topics = append(topics, target)
	}
	for _, topic := range topics {
		r.mu.RLock()
		subs := r.snapshotSubscribers(topic)
		r.mu.RUnlock()
		if len(subs) == 0 {
			r.bufferEvent(topic, event)
			continue
		}
		for _, sub := range subs {
			sub.deliver(event)
		}
	}
}

func (r *Router) snapshotSubscribers(topic string) []*subscriber {
	live := r.subscribers[topic]
	if len(live) == 0 {
		return nil
	}
	items := make([]*subscriber, 0, len(live))
	for sub := range live {
		items = append(items, sub)
	}
	return items
}

func (r *Router) removeSubscriber(topic string, sub *subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if subs := r.subscribers[topic]; subs != nil {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(r.subscribers, topic)
		}
	}
	sub.close()
}

func (r *Router) bufferEvent(topic string, event action.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	queue := r.backlog[topic]
	if len(queue) >= r.backlogLimit {
		queue = queue[1:]
		if r.logger != nil {
			r.logger.Debugf("eventbridge: backlog drop for %q (limit %d)", topic, r.backlogLimit)
		}
	}
	r.backlog[topic] = append(queue, event)
}

func normalizeTopic(target string) string {
	return strings.TrimSpace(target)
}

type subscriber struct {
	mu     sync.Mutex
	ch     chan action.Event
	logger logrus.FieldLogger
	closed bool
}

func newSubscriber(capacity int, logger logrus.FieldLogger) *subscriber {
	if capacity <= 0 {
		capacity = defaultSubscriberCapacity
	}
	return &subscriber{
		ch:     make(chan action.Event, capacity),
		logger: logger,
	}
}

func (s *subscriber) channel() <-chan action.Event {
	return s.ch
}

// deliver never blocks. A full queue gives up either its oldest entry or the
// incoming one, whichever matters less to a progress display.
func (s *subscriber) deliver(event action.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- event:
		return
	default:
	}
	var oldest action.Event
	select {
	case oldest = <-s.ch:
	default:
		s.ch <- event
		return
	}
	if shouldDropOldest(oldest, event) {
		s.logDrop(oldest)
		s.ch <- event
		return
	}
	s.ch <- oldest
	s.logDrop(event)
}

func (s *subscriber) logDrop(event action.Event) {
	if s.logger == nil {
		return
	}
	s.logger.Debugf("eventbridge: dropped %s for %q (queue overflow)", event.Kind, event.Target)
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

func shouldDropOldest(oldest, incoming action.Event) bool {
	oldestCritical := isCriticalEvent(oldest.Kind)
	incomingCritical := isCriticalEvent(incoming.Kind)
	switch {
	case oldestCritical && !incomingCritical:
		return false
	case !oldestCritical && incomingCritical:
		return true
	}
	oldestPreferred := isPreferredDrop(oldest.Kind)
	incomingPreferred := isPreferredDrop(incoming.Kind)
	if !oldestPreferred && incomingPreferred {
		return false
	}
	return true
}

func isCriticalEvent(kind action.EventKind) bool {
	switch kind {
	case action.EventRunFinished, action.EventTargetFinished, action.EventWatchCycle:
		return true
	}
	return false
}

func isPreferredDrop(kind action.EventKind) bool {
	return kind == action.EventWatchChange
}
