package workflow

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the conventional name of the target file at the project root.
const DefaultFile = "rayforge.yaml"

// ParseDefinitionYAML decodes a target definition from YAML/JSON bytes.
func ParseDefinitionYAML(data []byte) (Definition, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Definition{}, fmt.Errorf("workflow: definition payload is empty")
	}
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return Definition{}, fmt.Errorf("workflow: decode definition: %w", err)
	}
	return def.Normalized()
}

// LoadDefinitionReader reads target definition data from an io.Reader.
func LoadDefinitionReader(r io.Reader) (Definition, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return Definition{}, fmt.Errorf("workflow: read definition: %w", err)
	}
	return ParseDefinitionYAML(content)
}

// LoadDefinitionFile loads a target definition from an explicit file path.
func LoadDefinitionFile(path string) (Definition, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("workflow: read %s: %w", path, err)
	}
	def, parseErr := ParseDefinitionYAML(content)
	if parseErr != nil {
		return Definition{}, fmt.Errorf("workflow: %s: %w", path, parseErr)
	}
	return def, nil
}

// LoadProjectDefinition loads name (or DefaultFile) from projectDir. A missing
// file yields the built-in definition; found reports which one was used.
func LoadProjectDefinition(projectDir, name string) (def Definition, found bool, err error) {
	if name == "" {
		name = DefaultFile
	}
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(projectDir, name)
	}
	if _, statErr := os.Stat(path); statErr != nil {
		if errors.Is(statErr, fs.ErrNotExist) {
			def, err = DefaultDefinition().Normalized()
			return def, false, err
		}
		return Definition{}, false, fmt.Errorf("workflow: stat %s: %w", path, statErr)
	}
	def, err = LoadDefinitionFile(path)
	return def, err == nil, err
}

// MarshalDefinitionYAML encodes a definition in the on-disk format.
func MarshalDefinitionYAML(def Definition) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(def); err != nil {
		return nil, fmt.Errorf("workflow: encode definition: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("workflow: encode definition: %w", err)
	}
	return buf.Bytes(), nil
}
