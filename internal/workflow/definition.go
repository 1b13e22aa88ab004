package workflow

import (
	"fmt"
	"sort"
	"strings"
)

// ActionGroup is the implicit action of a target that only aggregates its
// dependencies.
const ActionGroup = "group"

// DependencyGraph maps target identifiers to the target IDs they depend on, in
// the order they should run.
type DependencyGraph map[string][]string

// Clone returns a deep copy of the graph.
func (g DependencyGraph) Clone() DependencyGraph {
	if len(g) == 0 {
		return nil
	}
	out := make(DependencyGraph, len(g))
	for key, deps := range g {
		if len(deps) == 0 {
			out[key] = nil
			continue
		}
		clone := make([]string, len(deps))
		copy(clone, deps)
		out[key] = clone
	}
	return out
}

// Definition declares the target graph of a project: what each target does and
// which targets must complete before it.
type Definition struct {
	ID          string            `json:"id" yaml:"id"`
	Name        string            `json:"name,omitempty" yaml:"name,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Default     []string          `json:"default,omitempty" yaml:"default,omitempty"`
	Env         map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	Targets     []TargetRef       `json:"targets" yaml:"targets"`
	Graph       DependencyGraph   `json:"graph,omitempty" yaml:"graph,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Clone returns a deep copy of the definition.
func (def Definition) Clone() Definition {
	clone := Definition{
		ID:          def.ID,
		Name:        def.Name,
		Description: def.Description,
		Default:     cloneStringSlice(def.Default),
		Env:         cloneStringMap(def.Env),
		Metadata:    cloneStringMap(def.Metadata),
		Graph:       def.Graph.Clone(),
	}
	if len(def.Targets) > 0 {
		clone.Targets = make([]TargetRef, len(def.Targets))
		for i, ref := range def.Targets {
			clone.Targets[i] = ref.Clone()
		}
	}
	return clone
}

// Validate ensures the definition is self-consistent.
func (def Definition) Validate() error {
	if def.ID == "" {
		return fmt.Errorf("workflow: id is required")
	}
	if len(def.Targets) == 0 {
		return fmt.Errorf("workflow %s: at least one target is required", def.ID)
	}
	seen := map[string]struct{}{}
	for idx, ref := range def.Targets {
		if err := ref.Validate(); err != nil {
			return fmt.Errorf("workflow %s target[%d]: %w", def.ID, idx, err)
		}
		if _, exists := seen[ref.ID]; exists {
			return fmt.Errorf("workflow %s: duplicate target id %s", def.ID, ref.ID)
		}
		seen[ref.ID] = struct{}{}
	}
	for key, deps := range def.Graph {
		if _, ok := seen[key]; !ok {
			return fmt.Errorf("workflow %s: graph references unknown target %s", def.ID, key)
		}
		for _, dep := range deps {
			if dep == key {
				return fmt.Errorf("workflow %s: target %s depends on itself", def.ID, key)
			}
			if _, ok := seen[dep]; !ok {
				return fmt.Errorf("workflow %s: graph dependency %s -> %s references unknown target", def.ID, key, dep)
			}
		}
	}
	for _, id := range def.Default {
		if _, ok := seen[id]; !ok {
			return fmt.Errorf("workflow %s: default list references unknown target %s", def.ID, id)
		}
	}
	return nil
}

// Normalized clones the definition, trims identifiers, merges inline target
// dependencies into the graph, and validates the result.
func (def Definition) Normalized() (Definition, error) {
	clone := def.Clone()
	clone.ID = strings.TrimSpace(clone.ID)
	if clone.Graph == nil {
		clone.Graph = DependencyGraph{}
	}
	for i := range clone.Targets {
		clone.Targets[i] = clone.Targets[i].normalized()
	}
	for _, ref := range clone.Targets {
		clone.Graph[ref.ID] = mergeDependencies(clone.Graph[ref.ID], ref.DependsOn)
	}
	clone.Default = trimAll(clone.Default)
	if err := clone.Validate(); err != nil {
		return Definition{}, err
	}
	return clone, nil
}

// TargetIDs returns the target identifiers in declaration order.
func (def Definition) TargetIDs() []string {
	ids := make([]string, 0, len(def.Targets))
	for _, ref := range def.Targets {
		ids = append(ids, ref.ID)
	}
	return ids
}

// Target looks up a target by ID.
func (def Definition) Target(id string) (TargetRef, bool) {
	for _, ref := range def.Targets {
		if ref.ID == id {
			return ref, true
		}
	}
	return TargetRef{}, false
}

// Dependencies returns the dependency list for a target.
func (def Definition) Dependencies(id string) []string {
	if def.Graph == nil {
		return nil
	}
	return cloneStringSlice(def.Graph[id])
}

// Merge appends extra targets to the definition. Duplicate IDs are rejected.
func (def Definition) Merge(extra ...TargetRef) (Definition, error) {
	if len(extra) == 0 {
		return def.Normalized()
	}
	clone := def.Clone()
	for _, ref := range extra {
		ref = ref.normalized()
		if _, exists := clone.Target(ref.ID); exists {
			return Definition{}, fmt.Errorf("workflow %s: target %s is already declared", clone.ID, ref.ID)
		}
		clone.Targets = append(clone.Targets, ref.Clone())
	}
	return clone.Normalized()
}

// TargetRef describes one named target and the action that implements it.
type TargetRef struct {
	ID          string       `json:"id" yaml:"id"`
	Action      string       `json:"action,omitempty" yaml:"action,omitempty"`
	Name        string       `json:"name,omitempty" yaml:"name,omitempty"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	DependsOn   []string     `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
	Config      ActionConfig `json:"config,omitempty" yaml:"config,omitempty"`
	Outputs     []string     `json:"outputs,omitempty" yaml:"outputs,omitempty"`
}

// Clone returns a deep copy of the target reference.
func (ref TargetRef) Clone() TargetRef {
	clone := TargetRef{
		ID:          ref.ID,
		Action:      ref.Action,
		Name:        ref.Name,
		Description: ref.Description,
		DependsOn:   cloneStringSlice(ref.DependsOn),
		Outputs:     cloneStringSlice(ref.Outputs),
	}
	if len(ref.Config) > 0 {
		clone.Config = ref.Config.Clone()
	}
	return clone
}

// ActionKind returns the action the target runs, defaulting to ActionGroup.
func (ref TargetRef) ActionKind() string {
	if ref.Action == "" {
		return ActionGroup
	}
	return ref.Action
}

// DisplayName prefers the human readable name and falls back to the ID.
func (ref TargetRef) DisplayName() string {
	if ref.Name != "" {
		return ref.Name
	}
	return ref.ID
}

// Validate ensures the reference is usable.
func (ref TargetRef) Validate() error {
	if ref.ID == "" {
		return fmt.Errorf("workflow: target id is required")
	}
	if strings.ContainsAny(ref.ID, " \t/\\") {
		return fmt.Errorf("workflow: target id %q contains whitespace or path separators", ref.ID)
	}
	deps := append([]string{}, ref.DependsOn...)
	sort.Strings(deps)
	for i := 1; i < len(deps); i++ {
		if deps[i] == deps[i-1] {
			return fmt.Errorf("workflow: target %s has duplicate dependency on %s", ref.ID, deps[i])
		}
	}
	return nil
}

func (ref TargetRef) normalized() TargetRef {
	ref.ID = strings.TrimSpace(ref.ID)
	ref.Action = strings.ToLower(strings.TrimSpace(ref.Action))
	ref.Name = strings.TrimSpace(ref.Name)
	ref.Description = strings.TrimSpace(ref.Description)
	ref.DependsOn = trimAll(ref.DependsOn)
	ref.Outputs = trimAll(ref.Outputs)
	return ref
}

// ActionConfig carries action-specific settings (opaque to the runtime).
type ActionConfig map[string]any

// Clone returns a shallow copy of the config map.
func (cfg ActionConfig) Clone() ActionConfig {
	if len(cfg) == 0 {
		return nil
	}
	clone := make(ActionConfig, len(cfg))
	for key, value := range cfg {
		clone[key] = value
	}
	return clone
}

// mergeDependencies keeps first-seen order so targets run their dependencies in
// declaration order.
func mergeDependencies(existing, adds []string) []string {
	if len(adds) == 0 && len(existing) == 0 {
		return nil
	}
	seen := map[string]struct{}{}
	var out []string
	for _, group := range [][]string{existing, adds} {
		for _, id := range group {
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

func trimAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func cloneStringSlice(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	clone := make([]string, len(values))
	copy(clone, values)
	return clone
}

func cloneStringMap(values map[string]string) map[string]string {
	if len(values) == 0 {
		return nil
	}
	clone := make(map[string]string, len(values))
	for key, value := range values {
		clone[key] = value
	}
	return clone
}
