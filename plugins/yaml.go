package plugins

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// SourceFile pairs a parsed plugin file with its on-disk source.
type SourceFile struct {
	File TargetFile
	Path string
}

// ParseTargetFileYAML decodes and validates a single plugin payload.
func ParseTargetFileYAML(data []byte) (TargetFile, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return TargetFile{}, fmt.Errorf("plugin: file is empty")
	}
	var file TargetFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return TargetFile{}, fmt.Errorf("plugin: decode: %w", err)
	}
	if err := file.Validate(); err != nil {
		return TargetFile{}, err
	}
	return file.Normalized(), nil
}

// LoadTargetFile reads a YAML plugin file from disk.
func LoadTargetFile(path string) (SourceFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return SourceFile{}, fmt.Errorf("plugin: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return SourceFile{}, fmt.Errorf("plugin: %s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return SourceFile{}, fmt.Errorf("plugin: read %s: %w", path, err)
	}
	file, err := ParseTargetFileYAML(data)
	if err != nil {
		return SourceFile{}, fmt.Errorf("plugin: %s: %w", path, err)
	}
	return SourceFile{File: file, Path: filepath.Clean(path)}, nil
}

// LoadTargetDir scans a directory for *.yaml plugin files. Missing
// directories are treated as "no plugins" to simplify startup.
func LoadTargetDir(dir string) ([]SourceFile, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("plugin: read %s: %w", trimmed, err)
	}
	var files []SourceFile
	for _, entry := range entries {
		if entry.IsDir() || !isYAMLFile(entry.Name()) {
			continue
		}
		file, err := LoadTargetFile(filepath.Join(trimmed, entry.Name()))
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func isYAMLFile(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}
