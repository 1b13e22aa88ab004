// internal/config/config.go
//
// Runtime settings and the .rayforge directory. Settings come from, in order
// of precedence: RAYFORGE_* environment variables, .rayforge/config.yaml,
// then built-in defaults.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/kingrea/rayforge/internal/workflow"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "RAYFORGE"

// ConfigFile is the settings file inside .rayforge/.
const ConfigFile = "config.yaml"

const defaultConfigYAML = `# rayforge settings. Environment variables override these values,
# e.g. RAYFORGE_LOG_LEVEL=debug or RAYFORGE_VIEWER="feh --scale-down".
log:
  level: info    # panic, fatal, error, warn, info, debug, trace
  format: text   # text or json

# Command used by open targets instead of the OS default viewer.
viewer: ""

# Target file, relative to the project root.
file: rayforge.yaml

# Quiet period before the watch loop re-runs targets.
debounce: 200ms

# Disable lipgloss styling of progress lines.
no_color: false
`

// LogSettings controls the structured logger.
type LogSettings struct {
	Level  string
	Format string
}

// Settings are the resolved runtime settings.
type Settings struct {
	Log      LogSettings
	Viewer   string
	File     string
	Debounce time.Duration
	NoColor  bool
}

// Config holds the runtime configuration for one project.
type Config struct {
	// ProjectDir is the directory rayforge was started in.
	ProjectDir string
	Layout     *workflow.Layout
	Settings   Settings
}

// InitStateDir creates the .rayforge directory structure and a commented
// config.yaml when none exists.
//
//	.rayforge/
//	├── config.yaml
//	├── logs/      <- rayforge.log and history.log
//	├── state/     <- last-run.json
//	└── targets/   <- extra target files (*.yaml, *.go)
func InitStateDir(projectDir string) error {
	layout := workflow.NewLayout(projectDir)
	if err := layout.Initialize(); err != nil {
		return fmt.Errorf("config: init %s: %w", layout.Dir(), err)
	}
	return ensureConfigFile(filepath.Join(layout.Dir(), ConfigFile))
}

// Load resolves settings for projectDir.
func Load(projectDir string) (*Config, error) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", projectDir, err)
	}
	layout := workflow.NewLayout(abs)
	v := newViper(filepath.Join(layout.Dir(), ConfigFile))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}
	settings, err := decode(v)
	if err != nil {
		return nil, err
	}
	return &Config{ProjectDir: abs, Layout: layout, Settings: settings}, nil
}

// TargetFile returns the absolute path of the target definition file.
func (c *Config) TargetFile() string {
	if filepath.IsAbs(c.Settings.File) {
		return c.Settings.File
	}
	return filepath.Join(c.ProjectDir, c.Settings.File)
}

// ConfigPath returns the settings file location.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Layout.Dir(), ConfigFile)
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("viewer", "")
	v.SetDefault("file", workflow.DefaultFile)
	v.SetDefault("debounce", "200ms")
	v.SetDefault("no_color", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (Settings, error) {
	settings := Settings{
		Log: LogSettings{
			Level:  strings.ToLower(strings.TrimSpace(v.GetString("log.level"))),
			Format: strings.ToLower(strings.TrimSpace(v.GetString("log.format"))),
		},
		Viewer:  strings.TrimSpace(v.GetString("viewer")),
		File:    strings.TrimSpace(v.GetString("file")),
		NoColor: v.GetBool("no_color"),
	}
	if settings.File == "" {
		settings.File = workflow.DefaultFile
	}
	raw := strings.TrimSpace(v.GetString("debounce"))
	debounce, err := time.ParseDuration(raw)
	if err != nil {
		return Settings{}, fmt.Errorf("config: debounce %q: %w", raw, err)
	}
	if debounce < 0 {
		return Settings{}, fmt.Errorf("config: debounce must not be negative")
	}
	settings.Debounce = debounce
	switch settings.Log.Format {
	case "text", "json":
	default:
		return Settings{}, fmt.Errorf("config: log format must be 'text' or 'json', got %q", settings.Log.Format)
	}
	return settings, nil
}

func ensureConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
