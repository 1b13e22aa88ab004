// internal/workflow/workflow.go
//
// Defines the project state directory layout.
// Everything rayforge persists lives under .rayforge/ in the project root.

package workflow

import (
	"os"
	"path/filepath"
)

// StateDirName is the directory created in every project rayforge runs in.
const StateDirName = ".rayforge"

// Directory names within .rayforge/
const (
	LogsDir    = "logs"
	StateDir   = "state"
	TargetsDir = "targets"
)

// File names within .rayforge/
const (
	FileLastRun = "last-run.json"
	FileLog     = "rayforge.log"
	FileHistory = "history.log"
	FileOutput  = "output.log"
)

// Layout resolves paths under a project's .rayforge directory.
type Layout struct {
	projectDir string
}

// NewLayout creates a Layout rooted at projectDir.
func NewLayout(projectDir string) *Layout {
	return &Layout{projectDir: projectDir}
}

// ProjectDir returns the project root.
func (l *Layout) ProjectDir() string {
	return l.projectDir
}

// Dir returns the .rayforge directory path.
func (l *Layout) Dir() string {
	return filepath.Join(l.projectDir, StateDirName)
}

// LogsDir returns .rayforge/logs
func (l *Layout) LogsDir() string {
	return filepath.Join(l.Dir(), LogsDir)
}

// StateDir returns .rayforge/state
func (l *Layout) StateDir() string {
	return filepath.Join(l.Dir(), StateDir)
}

// TargetsDir returns .rayforge/targets, where extra target files are discovered.
func (l *Layout) TargetsDir() string {
	return filepath.Join(l.Dir(), TargetsDir)
}

// LastRunPath returns the persisted engine state path.
func (l *Layout) LastRunPath() string {
	return filepath.Join(l.StateDir(), FileLastRun)
}

// LogPath returns the structured log path.
func (l *Layout) LogPath() string {
	return filepath.Join(l.LogsDir(), FileLog)
}

// HistoryPath returns the run history path.
func (l *Layout) HistoryPath() string {
	return filepath.Join(l.LogsDir(), FileHistory)
}

// OutputPath receives command output while the dashboard owns the terminal.
func (l *Layout) OutputPath() string {
	return filepath.Join(l.LogsDir(), FileOutput)
}

// Initialize creates the directory structure.
func (l *Layout) Initialize() error {
	for _, dir := range []string{l.LogsDir(), l.StateDir(), l.TargetsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// Reset removes persisted state, keeping logs.
func (l *Layout) Reset() error {
	return os.RemoveAll(l.StateDir())
}
