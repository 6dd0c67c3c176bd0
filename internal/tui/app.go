// Package tui implements the live monitor dashboard for evaluation runs.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/noah-ing/Agent0/internal/monitor"
	"github.com/noah-ing/Agent0/internal/tui/components"
	"github.com/noah-ing/Agent0/internal/tui/styles"
	"github.com/noah-ing/Agent0/internal/tui/views"
)

// App is the bubbletea model for the monitor dashboard. It polls the
// monitor on a timer and quits on its own once the run completes, unless
// follow mode keeps it open.
type App struct {
	mon     *monitor.Monitor
	refresh time.Duration
	follow  bool

	snapshot monitor.Snapshot
	haveSnap bool
	err      error

	width  int
	height int

	monitorView *views.MonitorView
	statusBar   *components.StatusBar
	keyMap      KeyMap
	theme       *styles.Theme
}

// NewApp creates the dashboard around an existing monitor. follow keeps
// the dashboard open after the run completes.
func NewApp(mon *monitor.Monitor, refresh time.Duration, follow bool) *App {
	if refresh <= 0 {
		refresh = monitor.DefaultRefresh
	}

	app := &App{
		mon:         mon,
		refresh:     refresh,
		follow:      follow,
		width:       100,
		height:      30,
		monitorView: views.NewMonitorView(),
		statusBar:   components.NewStatusBar(100),
		keyMap:      DefaultKeyMap(),
		theme:       styles.DefaultTheme(),
	}
	app.statusBar.SetKeyHints(app.keyMap.HelpText())
	return app
}

// Init starts the observe/tick loop.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.observe(), a.tick())
}

// Update handles messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.monitorView.SetWidth(msg.Width)
		a.statusBar.SetWidth(msg.Width)
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.keyMap.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.keyMap.Refresh):
			return a, a.observe()
		case key.Matches(msg, a.keyMap.Follow):
			a.follow = !a.follow
			return a, nil
		}
		return a, nil

	case TickMsg:
		return a, tea.Batch(a.observe(), a.tick())

	case SnapshotMsg:
		a.snapshot = msg.Snapshot
		a.haveSnap = true
		a.err = nil
		a.statusBar.SetStatus(string(msg.Snapshot.Status))
		a.statusBar.SetMessage(a.statusMessage(msg.Snapshot))
		if msg.Snapshot.Completed() && !a.follow {
			return a, tea.Quit
		}
		return a, nil

	case ErrorMsg:
		a.err = msg.Err
		a.statusBar.SetError(msg.Err.Error())
		return a, nil
	}

	return a, nil
}

// View renders the dashboard.
func (a *App) View() string {
	title := a.theme.TitleStyle.Render("agent0 monitor")

	var body string
	switch {
	case a.err != nil && !a.haveSnap:
		body = a.theme.StatusStalled.Render("observe failed: " + a.err.Error())
	case !a.haveSnap:
		body = a.theme.StatusPending.Render("observing...")
	default:
		body = a.monitorView.Render(a.snapshot)
	}

	return title + "\n" + body + "\n" + a.statusBar.Render()
}

// Snapshot returns the latest observation, for callers inspecting the
// final state after the program exits.
func (a *App) Snapshot() (monitor.Snapshot, bool) {
	return a.snapshot, a.haveSnap
}

// Following reports whether follow mode is active.
func (a *App) Following() bool {
	return a.follow
}

func (a *App) statusMessage(snap monitor.Snapshot) string {
	switch {
	case snap.Completed():
		if a.follow {
			return "run complete (following)"
		}
		return "run complete"
	case snap.Stalled():
		return "no progress past stall threshold"
	case len(snap.Datasets) == 0:
		return "waiting for logs"
	default:
		completed, total := snap.TotalProgress()
		if total == 0 {
			return "starting"
		}
		pct := float64(completed) / float64(total) * 100
		return fmt.Sprintf("%d/%d (%.1f%%)", completed, total, pct)
	}
}

func (a *App) observe() tea.Cmd {
	return func() tea.Msg {
		snap, err := a.mon.Observe()
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return SnapshotMsg{Snapshot: snap}
	}
}

func (a *App) tick() tea.Cmd {
	return tea.Tick(a.refresh, func(t time.Time) tea.Msg {
		return TickMsg{Timestamp: t}
	})
}
