// Package console prints engine progress as styled lines.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/rayforge/internal/action"
)

// Reporter writes one line per progress event to out.
type Reporter struct {
	mu     sync.Mutex
	out    io.Writer
	styles Styles
}

// NewReporter returns a reporter that writes to out.
func NewReporter(out io.Writer, noColor bool) *Reporter {
	return &Reporter{out: out, styles: NewStyles(lipgloss.NewRenderer(out), noColor)}
}

// Report implements action.Reporter.
func (r *Reporter) Report(ev action.Event) {
	line := r.format(ev)
	if line == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, line)
}

func (r *Reporter) format(ev action.Event) string {
	s := r.styles
	switch ev.Kind {
	case action.EventTargetStarted:
		return s.Running.Render("==>") + " " + ev.Target
	case action.EventTargetFinished:
		line := s.ForStatus(ev.Status).Render(Symbol(ev.Status)) + " " + ev.Target
		if ev.Duration > 0 {
			line += " " + s.Muted.Render(FormatDuration(ev.Duration))
		}
		switch {
		case ev.Err != nil:
			line += ": " + s.Failed.Render(ev.Err.Error())
		case ev.Status == action.StatusNoOp:
			line += " " + s.Muted.Render("(nothing to do)")
		case ev.Message != "":
			line += " " + s.Detail.Render(ev.Message)
		}
		return line
	case action.EventTargetSkipped:
		detail := strings.TrimSpace(ev.Message)
		if detail == "" {
			detail = "skipped"
		}
		return s.Muted.Render(fmt.Sprintf("- %s skipped (%s)", ev.Target, detail))
	case action.EventRunFinished:
		if ev.Status != action.StatusCompleted {
			return ""
		}
		return s.OK.Render("done") + " " + s.Muted.Render(FormatDuration(ev.Duration))
	case action.EventWatchStarted:
		return s.Running.Render("==>") + " " + ev.Message + s.Muted.Render(" (ctrl-c to stop)")
	case action.EventWatchChange:
		return s.Muted.Render("  changed " + ev.Message)
	case action.EventWatchCycle:
		label := "passed"
		style := s.OK
		switch ev.Status {
		case action.StatusFailed:
			label, style = "failed", s.Failed
		case action.StatusCancelled:
			label, style = "interrupted", s.Warn
		}
		return fmt.Sprintf("%s %s", s.Title.Render(fmt.Sprintf("cycle %d", ev.Cycle)), style.Render(label))
	}
	return ""
}

// FormatDuration rounds d for display.
func FormatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "0s"
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	case d < time.Minute:
		return d.Round(10 * time.Millisecond).String()
	default:
		return d.Round(time.Second).String()
	}
}
