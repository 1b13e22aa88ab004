package plugins

import (
	"fmt"

	"github.com/kingrea/rayforge/internal/action"
	"github.com/kingrea/rayforge/internal/workflow"
)

// LoadAll discovers YAML and Go plugin files under dir.
func LoadAll(dir string) ([]SourceFile, error) {
	yamlFiles, err := LoadTargetDir(dir)
	if err != nil {
		return nil, err
	}
	goFiles, err := LoadGoTargetDir(dir)
	if err != nil {
		return nil, err
	}
	return append(yamlFiles, goFiles...), nil
}

// RegisterPresets installs every preset declared by files into reg. Presets
// may build on built-in kinds or on presets registered earlier in the list.
func RegisterPresets(reg *action.Registry, files []SourceFile) error {
	if reg == nil {
		return nil
	}
	seen := make(map[string]string)
	for _, file := range files {
		for _, preset := range file.File.Presets {
			if existing, ok := seen[preset.Kind]; ok {
				return fmt.Errorf("plugin: duplicate preset %s (%s and %s)", preset.Kind, existing, file.Path)
			}
			seen[preset.Kind] = file.Path
			presetCopy := preset
			if err := reg.Register(presetCopy.Kind, func(cfg action.Config) (action.Action, error) {
				return newPresetAction(reg, presetCopy, cfg)
			}); err != nil {
				return fmt.Errorf("plugin: register %s from %s: %w", preset.Kind, file.Path, err)
			}
		}
	}
	return nil
}

// Apply merges plugin targets into def. Plugin targets cannot replace
// targets the definition already declares.
func Apply(def workflow.Definition, files []SourceFile) (workflow.Definition, error) {
	var extra []workflow.TargetRef
	origin := make(map[string]string)
	for _, file := range files {
		for _, ref := range file.File.Targets {
			if existing, ok := origin[ref.ID]; ok {
				return workflow.Definition{}, fmt.Errorf("plugin: duplicate target %s (%s and %s)", ref.ID, existing, file.Path)
			}
			origin[ref.ID] = file.Path
			extra = append(extra, ref)
		}
	}
	merged, err := def.Merge(extra...)
	if err != nil {
		return workflow.Definition{}, fmt.Errorf("plugin: %w", err)
	}
	return merged, nil
}

// Install loads every plugin under dir, registers its presets, and returns def
// extended with its targets.
func Install(reg *action.Registry, def workflow.Definition, dir string) (workflow.Definition, []SourceFile, error) {
	files, err := LoadAll(dir)
	if err != nil {
		return workflow.Definition{}, nil, err
	}
	if len(files) == 0 {
		return def, nil, nil
	}
	if err := RegisterPresets(reg, files); err != nil {
		return workflow.Definition{}, nil, err
	}
	merged, err := Apply(def, files)
	if err != nil {
		return workflow.Definition{}, nil, err
	}
	return merged, files, nil
}
