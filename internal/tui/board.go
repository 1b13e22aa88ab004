package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/rayforge/internal/action"
	"github.com/kingrea/rayforge/internal/console"
)

type rowState string

const (
	rowPending   rowState = "pending"
	rowRunning   rowState = "running"
	rowCompleted rowState = "completed"
	rowNoOp      rowState = "no-op"
	rowFailed    rowState = "failed"
	rowCancelled rowState = "cancelled"
	rowSkipped   rowState = "skipped"
)

type row struct {
	id       string
	state    rowState
	detail   string
	duration time.Duration
	// stale rows belong to an earlier run of the watch loop.
	stale bool
}

// board tracks one row per target in first-seen order.
type board struct {
	rows  []*row
	index map[string]*row
}

func newBoard(targets []string) *board {
	b := &board{index: map[string]*row{}}
	for _, id := range targets {
		b.row(id)
	}
	return b
}

func (b *board) row(id string) *row {
	if r, ok := b.index[id]; ok {
		return r
	}
	r := &row{id: id, state: rowPending}
	b.rows = append(b.rows, r)
	b.index[id] = r
	return r
}

func (b *board) apply(ev action.Event) {
	switch ev.Kind {
	case action.EventRunStarted:
		for _, r := range b.rows {
			if r.state != rowRunning {
				r.stale = true
			}
		}
	case action.EventTargetStarted:
		r := b.row(ev.Target)
		r.state = rowRunning
		r.detail = ""
		r.duration = 0
		r.stale = false
	case action.EventTargetFinished:
		r := b.row(ev.Target)
		r.state = stateFromStatus(ev.Status)
		r.duration = ev.Duration
		r.stale = false
		r.detail = ev.Message
		if ev.Err != nil {
			r.detail = ev.Err.Error()
		}
	case action.EventTargetSkipped:
		r := b.row(ev.Target)
		r.state = rowSkipped
		r.detail = ev.Message
		r.duration = 0
		r.stale = false
	}
}

func (b *board) running() bool {
	for _, r := range b.rows {
		if r.state == rowRunning {
			return true
		}
	}
	return false
}

func (b *board) render(styles console.Styles, spin string) []string {
	width := 0
	for _, r := range b.rows {
		width = max(width, len(r.id))
	}
	lines := make([]string, 0, len(b.rows))
	for _, r := range b.rows {
		marker := markerFor(r.state, spin)
		style := styleFor(styles, r.state)
		if r.stale {
			style = styles.Muted
		}
		line := fmt.Sprintf("%s %-*s  %s", style.Render(marker), width, r.id, style.Render(friendlyLabel(string(r.state))))
		if r.duration > 0 {
			line += " " + styles.Muted.Render(console.FormatDuration(r.duration))
		}
		if detail := firstLine(r.detail); detail != "" {
			line += " " + styles.Detail.Render(detail)
		}
		lines = append(lines, line)
	}
	return lines
}

func stateFromStatus(status action.Status) rowState {
	switch status {
	case action.StatusCompleted:
		return rowCompleted
	case action.StatusNoOp:
		return rowNoOp
	case action.StatusFailed:
		return rowFailed
	case action.StatusCancelled:
		return rowCancelled
	default:
		return rowSkipped
	}
}

func markerFor(state rowState, spin string) string {
	switch state {
	case rowRunning:
		return spin
	case rowPending:
		return " "
	case rowSkipped:
		return "-"
	default:
		return console.Symbol(action.Status(state))
	}
}

func styleFor(styles console.Styles, state rowState) lipgloss.Style {
	switch state {
	case rowRunning:
		return styles.Running
	case rowSkipped, rowPending:
		return styles.Muted
	default:
		return styles.ForStatus(action.Status(state))
	}
}

func friendlyLabel(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	replacer := strings.NewReplacer("_", " ", "-", " ")
	words := strings.Fields(replacer.Replace(strings.ToLower(value)))
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
