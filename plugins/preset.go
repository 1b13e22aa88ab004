package plugins

import (
	"context"
	"strings"

	"github.com/kingrea/rayforge/internal/action"
)

// presetAction runs its base action with the preset's configuration under
// the target's own overrides.
type presetAction struct {
	action.Base
	inner action.Action
}

func newPresetAction(reg *action.Registry, preset Preset, overrides action.Config) (*presetAction, error) {
	if err := preset.Validate(); err != nil {
		return nil, err
	}
	normalized := preset.Normalized()
	inner, err := reg.Resolve(normalized.Base, mergeConfigs(normalized.Config, overrides))
	if err != nil {
		return nil, err
	}
	description := normalized.Description
	if description == "" {
		description = inner.Info().Description
	}
	return &presetAction{
		Base: action.NewBase(action.Info{
			ID:          normalized.Kind,
			Name:        normalized.DisplayName(),
			Description: description,
			Version:     normalized.Version,
		}),
		inner: inner,
	}, nil
}

func (p *presetAction) Run(ctx context.Context, rc *action.RunContext) (action.Result, error) {
	return p.inner.Run(ctx, rc)
}

func mergeConfigs(base action.Config, override action.Config) action.Config {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	merged := make(action.Config)
	for k, v := range base {
		if key := strings.TrimSpace(k); key != "" {
			merged[key] = v
		}
	}
	for k, v := range override {
		if key := strings.TrimSpace(k); key != "" {
			merged[key] = v
		}
	}
	return merged
}
