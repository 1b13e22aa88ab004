package plugins

import (
	"fmt"
	"strings"

	"github.com/kingrea/rayforge/internal/action"
	"github.com/kingrea/rayforge/internal/workflow"
)

// TargetFile describes one plugin file under .rayforge/targets.
//
// A file may add targets to the project graph and declare presets: named
// action kinds that reuse a built-in action with fixed configuration, so
// several targets can share e.g. a lint command without repeating it.
type TargetFile struct {
	Presets []Preset             `json:"presets,omitempty" yaml:"presets,omitempty"`
	Targets []workflow.TargetRef `json:"targets,omitempty" yaml:"targets,omitempty"`
}

// Normalized returns a trimmed copy of the file.
func (f TargetFile) Normalized() TargetFile {
	clone := TargetFile{}
	if len(f.Presets) > 0 {
		clone.Presets = make([]Preset, len(f.Presets))
		for i, preset := range f.Presets {
			clone.Presets[i] = preset.Normalized()
		}
	}
	if len(f.Targets) > 0 {
		clone.Targets = make([]workflow.TargetRef, len(f.Targets))
		for i, ref := range f.Targets {
			ref = ref.Clone()
			ref.ID = strings.TrimSpace(ref.ID)
			ref.Action = strings.ToLower(strings.TrimSpace(ref.Action))
			clone.Targets[i] = ref
		}
	}
	return clone
}

// Validate ensures presets and targets are well-formed. Dependencies are
// checked later, once the targets are merged into the project graph.
func (f TargetFile) Validate() error {
	normalized := f.Normalized()
	if len(normalized.Presets) == 0 && len(normalized.Targets) == 0 {
		return fmt.Errorf("plugin: file declares no presets or targets")
	}
	seen := make(map[string]struct{}, len(normalized.Presets))
	for idx, preset := range normalized.Presets {
		if err := preset.Validate(); err != nil {
			return fmt.Errorf("presets[%d]: %w", idx, err)
		}
		if _, dup := seen[preset.Kind]; dup {
			return fmt.Errorf("presets[%d]: duplicate preset %s", idx, preset.Kind)
		}
		seen[preset.Kind] = struct{}{}
	}
	for idx, ref := range normalized.Targets {
		if err := ref.Validate(); err != nil {
			return fmt.Errorf("targets[%d]: %w", idx, err)
		}
	}
	return nil
}

// Preset declares a new action kind backed by an existing one.
type Preset struct {
	Kind        string        `json:"kind" yaml:"kind"`
	Base        string        `json:"base" yaml:"base"`
	Name        string        `json:"name,omitempty" yaml:"name,omitempty"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string        `json:"version,omitempty" yaml:"version,omitempty"`
	Config      action.Config `json:"config,omitempty" yaml:"config,omitempty"`
}

// Normalized returns a trimmed, copy-on-write variant of the preset.
func (p Preset) Normalized() Preset {
	clone := Preset{
		Kind:        strings.ToLower(strings.TrimSpace(p.Kind)),
		Base:        strings.ToLower(strings.TrimSpace(p.Base)),
		Name:        strings.TrimSpace(p.Name),
		Description: strings.TrimSpace(p.Description),
		Version:     strings.TrimSpace(p.Version),
	}
	if clone.Version == "" {
		clone.Version = "1.0.0"
	}
	if len(p.Config) > 0 {
		clone.Config = make(action.Config, len(p.Config))
		for key, value := range p.Config {
			trimmed := strings.TrimSpace(key)
			if trimmed == "" {
				continue
			}
			clone.Config[trimmed] = value
		}
	}
	return clone
}

// Validate ensures the preset names itself and its base action.
func (p Preset) Validate() error {
	normalized := p.Normalized()
	if normalized.Kind == "" {
		return fmt.Errorf("plugin: preset kind is required")
	}
	if strings.ContainsAny(normalized.Kind, " \t/\\") {
		return fmt.Errorf("plugin: preset kind %q contains whitespace or path separators", normalized.Kind)
	}
	if normalized.Base == "" {
		return fmt.Errorf("plugin: preset %s: base is required", normalized.Kind)
	}
	if normalized.Base == normalized.Kind {
		return fmt.Errorf("plugin: preset %s cannot be based on itself", normalized.Kind)
	}
	return nil
}

// DisplayName prefers the configured name and falls back to the kind.
func (p Preset) DisplayName() string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	return p.Kind
}
