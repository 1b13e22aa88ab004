package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/kingrea/rayforge/internal/config"
)

// Logger writes structured entries to .rayforge/logs/rayforge.log so users can
// inspect failures after the terminal output has scrolled away. Warnings and
// errors are echoed to the console as well.
type Logger struct {
	*log.Logger
	file *os.File
}

// New opens (or reuses) the log file at path and configures level and format
// from settings. console receives warn and above; nil disables the echo.
func New(path string, settings config.LogSettings, console io.Writer) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	logger := log.New()
	logger.SetOutput(f)
	Configure(logger, settings)
	if console != nil {
		logger.AddHook(&consoleHook{out: console, formatter: &log.TextFormatter{
			DisableTimestamp: true,
			DisableQuote:     true,
		}})
	}
	return &Logger{Logger: logger, file: f}, nil
}

// Configure applies level and format. Unknown levels fall back to info.
func Configure(logger *log.Logger, settings config.LogSettings) {
	level, err := log.ParseLevel(settings.Level)
	if err != nil {
		level = log.InfoLevel
	}
	logger.SetLevel(level)

	if settings.Format == "json" {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true, DisableColors: true})
	}
}

// Close releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Path returns the log file location.
func (l *Logger) Path() string {
	if l == nil || l.file == nil {
		return ""
	}
	return l.file.Name()
}

type consoleHook struct {
	out       io.Writer
	formatter log.Formatter
}

func (h *consoleHook) Levels() []log.Level {
	return []log.Level{log.PanicLevel, log.FatalLevel, log.ErrorLevel, log.WarnLevel}
}

func (h *consoleHook) Fire(entry *log.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.out.Write(line)
	return err
}
