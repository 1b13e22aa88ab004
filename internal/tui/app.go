// internal/tui/app.go
//
// Live dashboard for `rayforge tdd --ui`. It follows bubbletea's Elm
// architecture: engine events arrive as messages, Update folds them into the
// board, View renders it. The work itself (the engine run) happens in a
// goroutine owned by Run.

package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/rayforge/internal/action"
	"github.com/kingrea/rayforge/internal/console"
)

const maxRecentChanges = 5

// Options configures one dashboard session.
type Options struct {
	Title   string
	Targets []string
	Events  <-chan action.Event
	NoColor bool
	Output  io.Writer
	// Work runs the targets. The dashboard exits when it returns.
	Work func(ctx context.Context) error
}

type eventMsg struct{ event action.Event }

type eventsClosedMsg struct{}

// RunFinishedMsg tells the dashboard the work returned.
type RunFinishedMsg struct{ Err error }

// App is the dashboard model.
type App struct {
	title   string
	events  <-chan action.Event
	stop    func()
	styles  console.Styles
	board   *board
	spinner spinner.Model

	watching    string
	cycle       int
	cycleStatus action.Status
	changes     []string

	stopping bool
	finished bool
	err      error
	width    int
}

// NewApp creates the dashboard. stop is called when the user asks to quit.
func NewApp(title string, targets []string, events <-chan action.Event, stop func(), noColor bool) *App {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	styles := console.NewStyles(lipgloss.DefaultRenderer(), noColor)
	s.Style = styles.Running
	return &App{
		title:   title,
		events:  events,
		stop:    stop,
		styles:  styles,
		board:   newBoard(targets),
		spinner: s,
	}
}

// Init starts the spinner and the event pump.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, waitForEvent(a.events))
}

// Update folds one message into the model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case eventMsg:
		a.apply(m.event)
		return a, waitForEvent(a.events)
	case eventsClosedMsg:
		return a, nil
	case RunFinishedMsg:
		a.finished = true
		a.err = m.Err
		return a, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(m)
		return a, cmd
	case tea.WindowSizeMsg:
		a.width = m.Width
		return a, nil
	case tea.KeyMsg:
		switch m.String() {
		case "q", "esc", "ctrl+c":
			if a.finished {
				return a, tea.Quit
			}
			if !a.stopping {
				a.stopping = true
				if a.stop != nil {
					a.stop()
				}
			}
		}
		return a, nil
	}
	return a, nil
}

func (a *App) apply(ev action.Event) {
	a.board.apply(ev)
	switch ev.Kind {
	case action.EventWatchStarted:
		a.watching = ev.Message
	case action.EventWatchChange:
		a.changes = append(a.changes, ev.Message)
		if len(a.changes) > maxRecentChanges {
			a.changes = a.changes[len(a.changes)-maxRecentChanges:]
		}
	case action.EventWatchCycle:
		a.cycle = ev.Cycle
		a.cycleStatus = ev.Status
	}
}

// View renders the dashboard.
func (a *App) View() string {
	s := a.styles
	lines := []string{s.Title.Render("rayforge · " + a.title)}
	if a.watching != "" {
		lines = append(lines, s.Detail.Render(a.watching))
	}
	lines = append(lines, "")
	lines = append(lines, a.board.render(s, a.spinner.View())...)
	if a.cycle > 0 {
		label := "passed"
		style := s.OK
		switch a.cycleStatus {
		case action.StatusFailed:
			label, style = "failed", s.Failed
		case action.StatusCancelled:
			label, style = "interrupted", s.Warn
		}
		lines = append(lines, "", fmt.Sprintf("cycle %d: %s", a.cycle, style.Render(label)))
	}
	if len(a.changes) > 0 {
		lines = append(lines, "", s.Muted.Render("recent changes:"))
		for _, change := range a.changes {
			lines = append(lines, s.Muted.Render("  "+change))
		}
	}
	lines = append(lines, "")
	switch {
	case a.finished && a.err != nil:
		lines = append(lines, s.Failed.Render(a.err.Error()))
	case a.stopping:
		lines = append(lines, s.Warn.Render("stopping…"))
	default:
		lines = append(lines, s.Muted.Render("q=quit"))
	}
	return strings.Join(lines, "\n") + "\n"
}

func waitForEvent(events <-chan action.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg{event: ev}
	}
}

// Run shows the dashboard while opts.Work executes and returns its error.
// Quitting the dashboard cancels the work's context.
func Run(ctx context.Context, opts Options) error {
	if opts.Work == nil {
		return fmt.Errorf("tui: work function is required")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app := NewApp(opts.Title, opts.Targets, opts.Events, cancel, opts.NoColor)
	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(opts.Output))
	}
	p := tea.NewProgram(app, programOpts...)

	done := make(chan error, 1)
	go func() {
		err := opts.Work(ctx)
		done <- err
		p.Send(RunFinishedMsg{Err: err})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return fmt.Errorf("tui: %w", err)
	}
	cancel()
	return <-done
}
