// Package artifact defines the filesystem outputs targets produce and clean
// up. Each artifact has a stable identifier, a kind, and a pattern relative to
// the project root.

package artifact

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind captures how an artifact pattern is matched on disk.
type Kind string

const (
	// KindFile is a single regular file.
	KindFile Kind = "file"
	// KindGlob matches any number of files in one directory (no recursion).
	KindGlob Kind = "glob"
	// KindDirectory is a directory removed as a whole.
	KindDirectory Kind = "directory"
)

// ArtifactRef declares a stable identifier and location for an artifact.
type ArtifactRef struct {
	ID          string
	Name        string
	Description string
	Kind        Kind
	Pattern     string
}

// Validate ensures the reference is well-formed.
func (r ArtifactRef) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("artifact: id is required")
	}
	switch r.Kind {
	case KindFile, KindGlob, KindDirectory:
	case "":
		return fmt.Errorf("artifact: kind is required for %s", r.ID)
	default:
		return fmt.Errorf("artifact: unknown kind %s for %s", r.Kind, r.ID)
	}
	if strings.TrimSpace(r.Pattern) == "" {
		return fmt.Errorf("artifact: pattern is required for %s", r.ID)
	}
	if filepath.IsAbs(r.Pattern) {
		return fmt.Errorf("artifact: pattern for %s must be relative to the project", r.ID)
	}
	return nil
}

// State captures the readiness of an artifact on disk.
type State string

const (
	StateMissing State = "missing"
	StateReady   State = "ready"
	StateInvalid State = "invalid"
	StateError   State = "error"
)

// CheckResult captures Store.Check results.
type CheckResult struct {
	Ref     ArtifactRef
	Matches []string
	State   State
	Err     error
}

// Built-in artifacts of the render pipeline.
var (
	CanvasPPM = register(ArtifactRef{
		ID:          "canvas-ppm",
		Name:        "Canvas",
		Description: "Image written by the renderer",
		Kind:        KindFile,
		Pattern:     "canvas.ppm",
	})
	AnyPPM = register(ArtifactRef{
		ID:          "ppm-images",
		Name:        "PPM images",
		Description: "Every PPM image in the project root",
		Kind:        KindGlob,
		Pattern:     "*.ppm",
	})
	BuildOutput = register(ArtifactRef{
		ID:          "build-output",
		Name:        "Build output",
		Description: "Compiled binaries",
		Kind:        KindDirectory,
		Pattern:     "bin",
	})
	CanvasBinary = register(ArtifactRef{
		ID:          "canvas-binary",
		Name:        "Renderer binary",
		Description: "Release build of the renderer",
		Kind:        KindFile,
		Pattern:     "bin/canvas",
	})
)

var refs map[string]ArtifactRef

func register(ref ArtifactRef) ArtifactRef {
	if refs == nil {
		refs = map[string]ArtifactRef{}
	}
	refs[ref.ID] = ref
	return ref
}

// Lookup returns a registered artifact reference by ID.
func Lookup(id string) (ArtifactRef, bool) {
	ref, ok := refs[id]
	return ref, ok
}

// Resolve turns a target output or config value into a reference. Registered
// IDs win; otherwise the value is treated as a path, a glob when it contains
// pattern characters, or a directory when it ends with a slash.
func Resolve(value string) ArtifactRef {
	trimmed := strings.TrimSpace(value)
	if ref, ok := Lookup(trimmed); ok {
		return ref
	}
	kind := KindFile
	switch {
	case strings.ContainsAny(trimmed, "*?["):
		kind = KindGlob
	case strings.HasSuffix(trimmed, "/"):
		kind = KindDirectory
	}
	clean := filepath.Clean(strings.TrimSuffix(trimmed, "/"))
	return ArtifactRef{ID: clean, Name: clean, Kind: kind, Pattern: clean}
}
