package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store resolves and removes artifacts rooted at a project directory.
type Store struct {
	root string
}

// NewStore builds a store for the project rooted at root.
func NewStore(root string) *Store {
	return &Store{root: filepath.Clean(root)}
}

// Root returns the directory artifacts are resolved against.
func (s *Store) Root() string {
	return s.root
}

// Path returns the absolute location of a file or directory artifact. Globs
// return their joined pattern.
func (s *Store) Path(ref ArtifactRef) string {
	return filepath.Join(s.root, filepath.FromSlash(ref.Pattern))
}

// Check inspects the artifact on disk. Contents are never read.
func (s *Store) Check(ref ArtifactRef) (CheckResult, error) {
	if err := ref.Validate(); err != nil {
		return CheckResult{Ref: ref, State: StateError, Err: err}, err
	}
	if ref.Kind == KindGlob {
		matches, err := s.glob(ref)
		if err != nil {
			return CheckResult{Ref: ref, State: StateError, Err: err}, err
		}
		if len(matches) == 0 {
			return CheckResult{Ref: ref, State: StateMissing}, nil
		}
		return CheckResult{Ref: ref, Matches: matches, State: StateReady}, nil
	}
	path := s.Path(ref)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return CheckResult{Ref: ref, State: StateMissing}, nil
		}
		return CheckResult{Ref: ref, State: StateError, Err: err}, err
	}
	switch {
	case ref.Kind == KindDirectory && !info.IsDir():
		err = fmt.Errorf("artifact: %s expected directory at %s", ref.ID, path)
	case ref.Kind == KindFile && info.IsDir():
		err = fmt.Errorf("artifact: %s expected file got directory at %s", ref.ID, path)
	}
	if err != nil {
		return CheckResult{Ref: ref, Matches: []string{path}, State: StateInvalid, Err: err}, err
	}
	return CheckResult{Ref: ref, Matches: []string{path}, State: StateReady}, nil
}

// Remove deletes everything the artifact matches and returns the removed
// paths. Missing artifacts are not an error.
func (s *Store) Remove(ref ArtifactRef) ([]string, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	var targets []string
	if ref.Kind == KindGlob {
		matches, err := s.glob(ref)
		if err != nil {
			return nil, err
		}
		targets = matches
	} else {
		targets = []string{s.Path(ref)}
	}
	var removed []string
	for _, path := range targets {
		if err := s.contained(path); err != nil {
			return removed, err
		}
		if _, err := os.Lstat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return removed, fmt.Errorf("artifact: stat %s: %w", path, err)
		}
		if err := os.RemoveAll(path); err != nil {
			return removed, fmt.Errorf("artifact: remove %s: %w", path, err)
		}
		removed = append(removed, path)
	}
	return removed, nil
}

func (s *Store) glob(ref ArtifactRef) ([]string, error) {
	matches, err := filepath.Glob(s.Path(ref))
	if err != nil {
		return nil, fmt.Errorf("artifact: bad pattern %q for %s: %w", ref.Pattern, ref.ID, err)
	}
	var files []string
	for _, match := range matches {
		info, statErr := os.Lstat(match)
		if statErr != nil || info.IsDir() {
			continue
		}
		files = append(files, match)
	}
	sort.Strings(files)
	return files, nil
}

func (s *Store) contained(path string) error {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return fmt.Errorf("artifact: %s is outside %s: %w", path, s.root, err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("artifact: refusing to remove %s outside project %s", path, s.root)
	}
	return nil
}
