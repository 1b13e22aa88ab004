package action

import (
	"fmt"
	"sort"
	"sync"
)

// Factory constructs an action with the provided configuration.
type Factory func(Config) (Action, error)

// Registry maintains known action factories keyed by action kind.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// Register installs an action factory. Returns an error if the kind already exists.
func (r *Registry) Register(kind string, factory Factory) error {
	if kind == "" {
		return fmt.Errorf("action: kind is required")
	}
	if factory == nil {
		return fmt.Errorf("action: factory is required for %s", kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("action: %s already registered", kind)
	}
	r.factories[kind] = factory
	return nil
}

// MustRegister panics if registration fails.
func (r *Registry) MustRegister(kind string, factory Factory) {
	if err := r.Register(kind, factory); err != nil {
		panic(err)
	}
}

// Resolve constructs an action by kind.
func (r *Registry) Resolve(kind string, cfg Config) (Action, error) {
	r.mu.RLock()
	factory, ok := r.factories[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("action: unknown kind %s", kind)
	}
	act, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("action %s: %w", kind, err)
	}
	if err := act.Info().Validate(); err != nil {
		return nil, err
	}
	return act, nil
}

// Kinds returns a sorted list of registered action kinds.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
