package action

import (
	"fmt"
	"strings"
	"time"
)

// Config represents action-specific configuration (opaque to the runtime).
type Config map[string]any

// Has reports whether key is set.
func (c Config) Has(key string) bool {
	_, ok := c[key]
	return ok
}

// String returns the trimmed string value for key.
func (c Config) String(key string) (string, error) {
	raw, ok := c[key]
	if !ok || raw == nil {
		return "", nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("config %s: expected string, got %T", key, raw)
	}
	return strings.TrimSpace(value), nil
}

// Strings accepts either a single string or a list of strings.
func (c Config) Strings(key string) ([]string, error) {
	raw, ok := c[key]
	if !ok || raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		return []string{strings.TrimSpace(v)}, nil
	case []string:
		return append([]string{}, v...), nil
	case []any:
		out := make([]string, 0, len(v))
		for idx, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("config %s[%d]: expected string, got %T", key, idx, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("config %s: expected string or list, got %T", key, raw)
	}
}

// Bool returns the boolean value for key, false when unset.
func (c Config) Bool(key string) (bool, error) {
	raw, ok := c[key]
	if !ok || raw == nil {
		return false, nil
	}
	value, ok := raw.(bool)
	if !ok {
		return false, fmt.Errorf("config %s: expected bool, got %T", key, raw)
	}
	return value, nil
}

// Duration parses a Go duration string. Bare integers are milliseconds.
func (c Config) Duration(key string, fallback time.Duration) (time.Duration, error) {
	raw, ok := c[key]
	if !ok || raw == nil {
		return fallback, nil
	}
	switch v := raw.(type) {
	case string:
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("config %s: %w", key, err)
		}
		return d, nil
	case int:
		return time.Duration(v) * time.Millisecond, nil
	case int64:
		return time.Duration(v) * time.Millisecond, nil
	case float64:
		return time.Duration(v * float64(time.Millisecond)), nil
	case time.Duration:
		return v, nil
	default:
		return 0, fmt.Errorf("config %s: expected duration, got %T", key, raw)
	}
}

// StringMap returns a string-to-string map, stringifying scalar values.
func (c Config) StringMap(key string) (map[string]string, error) {
	raw, ok := c[key]
	if !ok || raw == nil {
		return nil, nil
	}
	out := map[string]string{}
	switch v := raw.(type) {
	case map[string]string:
		for k, val := range v {
			out[k] = val
		}
	case map[string]any:
		for k, val := range v {
			out[k] = fmt.Sprint(val)
		}
	default:
		return nil, fmt.Errorf("config %s: expected map, got %T", key, raw)
	}
	return out, nil
}

// Clone returns a shallow copy of the config map.
func (c Config) Clone() Config {
	if len(c) == 0 {
		return nil
	}
	out := make(Config, len(c))
	for key, value := range c {
		out[key] = value
	}
	return out
}
