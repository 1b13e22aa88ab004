package plugins

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"gopkg.in/yaml.v3"
)

const (
	goTargetsFuncName = "Targets"
	goPresetsFuncName = "Presets"
)

// LoadGoTargetDir interprets every .go file in dir and collects the targets
// returned by its Targets() function and, when defined, the presets returned
// by Presets(). Both return ([]map[string]any, error) using the YAML schema.
func LoadGoTargetDir(dir string) ([]SourceFile, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("plugin: read %s: %w", trimmed, err)
	}
	var files []SourceFile
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".go" {
			continue
		}
		file, err := loadGoTargetFile(filepath.Join(trimmed, entry.Name()))
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func loadGoTargetFile(path string) (SourceFile, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return SourceFile{}, fmt.Errorf("plugin: read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(code))) == 0 {
		return SourceFile{}, fmt.Errorf("plugin: %s is empty", path)
	}
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return SourceFile{}, fmt.Errorf("plugin: load stdlib symbols: %w", err)
	}
	if _, err := i.EvalPath(path); err != nil {
		return SourceFile{}, fmt.Errorf("plugin: interpret %s: %w", path, err)
	}
	payload := map[string]any{}
	fnValue, err := i.Eval(goTargetsFuncName)
	if err != nil {
		return SourceFile{}, fmt.Errorf("plugin: %s must define %s() ([]map[string]any, error): %w", path, goTargetsFuncName, err)
	}
	targets, err := invokeListFunc(goTargetsFuncName, fnValue)
	if err != nil {
		return SourceFile{}, fmt.Errorf("plugin: %s: %w", path, err)
	}
	payload["targets"] = targets
	if presetValue, err := i.Eval(goPresetsFuncName); err == nil {
		presets, err := invokeListFunc(goPresetsFuncName, presetValue)
		if err != nil {
			return SourceFile{}, fmt.Errorf("plugin: %s: %w", path, err)
		}
		payload["presets"] = presets
	}
	data, err := yaml.Marshal(payload)
	if err != nil {
		return SourceFile{}, fmt.Errorf("plugin: %s: %w", path, err)
	}
	file, err := ParseTargetFileYAML(data)
	if err != nil {
		return SourceFile{}, fmt.Errorf("plugin: %s: %w", path, err)
	}
	return SourceFile{File: file, Path: filepath.Clean(path)}, nil
}

func invokeListFunc(name string, value reflect.Value) ([]map[string]any, error) {
	if !value.IsValid() {
		return nil, fmt.Errorf("missing %s function", name)
	}
	fn := value
	if fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is not a function", name)
	}
	if fn.Type().NumIn() != 0 {
		return nil, fmt.Errorf("%s must not take arguments", name)
	}
	results := fn.Call(nil)
	if len(results) == 0 || len(results) > 2 {
		return nil, fmt.Errorf("%s must return ([]map[string]any[, error])", name)
	}
	if len(results) == 2 && !results[1].IsNil() {
		if e, ok := results[1].Interface().(error); ok && e != nil {
			return nil, e
		}
		return nil, fmt.Errorf("%s returned non-error second value", name)
	}
	listVal := results[0]
	if list, ok := listVal.Interface().([]map[string]any); ok {
		return list, nil
	}
	if listVal.Kind() == reflect.Slice {
		out := make([]map[string]any, listVal.Len())
		for idx := 0; idx < listVal.Len(); idx++ {
			m, ok := listVal.Index(idx).Interface().(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%s[%d] is not map[string]any", name, idx)
			}
			out[idx] = m
		}
		return out, nil
	}
	return nil, fmt.Errorf("%s must return []map[string]any", name)
}
