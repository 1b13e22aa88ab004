package engine

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kingrea/rayforge/internal/workflow"
)

// ErrStateNotFound is returned when no run has been persisted yet.
var ErrStateNotFound = errors.New("workflow engine: state not found")

// StateStore persists run snapshots.
type StateStore interface {
	Load() (State, error)
	Save(State) error
}

// Repository stores the last run under the project state directory.
type Repository struct {
	path string
}

// NewRepository creates a repository writing to the layout's last-run file.
func NewRepository(layout *workflow.Layout) *Repository {
	return &Repository{path: layout.LastRunPath()}
}

// Path returns the state file location.
func (r *Repository) Path() string {
	return r.path
}

// Load reads the persisted state if present.
func (r *Repository) Load() (State, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return State{}, ErrStateNotFound
		}
		return State{}, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, err
	}
	return state, nil
}

// Save writes the state through a temp file so readers never see a partial
// document.
func (r *Repository) Save(state State) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".last-run-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(append(encoded, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), r.path)
}
