package console

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/rayforge/internal/action"
)

// Palette colors shared by the line reporter and the dashboard.
var (
	colorOK      = lipgloss.Color("#4CAF50")
	colorFailed  = lipgloss.Color("#FF6B6B")
	colorRunning = lipgloss.Color("#5B8DEF")
	colorWarn    = lipgloss.Color("#F7B801")
	colorMuted   = lipgloss.Color("#999999")
	colorDetail  = lipgloss.Color("#A0AEC0")
)

// Styles groups the lipgloss styles used to render progress.
type Styles struct {
	OK      lipgloss.Style
	Failed  lipgloss.Style
	Running lipgloss.Style
	Warn    lipgloss.Style
	Muted   lipgloss.Style
	Detail  lipgloss.Style
	Title   lipgloss.Style
}

// NewStyles builds styles bound to r. With noColor every style renders plain
// text, which keeps piped output and log captures readable.
func NewStyles(r *lipgloss.Renderer, noColor bool) Styles {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	if noColor {
		plain := r.NewStyle()
		return Styles{OK: plain, Failed: plain, Running: plain, Warn: plain, Muted: plain, Detail: plain, Title: plain}
	}
	return Styles{
		OK:      r.NewStyle().Foreground(colorOK).Bold(true),
		Failed:  r.NewStyle().Foreground(colorFailed).Bold(true),
		Running: r.NewStyle().Foreground(colorRunning).Bold(true),
		Warn:    r.NewStyle().Foreground(colorWarn).Bold(true),
		Muted:   r.NewStyle().Foreground(colorMuted),
		Detail:  r.NewStyle().Foreground(colorDetail),
		Title:   r.NewStyle().Bold(true).Underline(true),
	}
}

// ForStatus picks the style of an action status.
func (s Styles) ForStatus(status action.Status) lipgloss.Style {
	switch status {
	case action.StatusCompleted:
		return s.OK
	case action.StatusFailed:
		return s.Failed
	case action.StatusCancelled:
		return s.Warn
	case action.StatusNoOp:
		return s.Muted
	default:
		return s.Muted
	}
}

// Symbol returns the one-character marker printed before a target.
func Symbol(status action.Status) string {
	switch status {
	case action.StatusCompleted:
		return "✓"
	case action.StatusFailed:
		return "✗"
	case action.StatusCancelled:
		return "■"
	case action.StatusNoOp:
		return "·"
	default:
		return "-"
	}
}
