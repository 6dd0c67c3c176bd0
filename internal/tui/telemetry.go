package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/noah-ing/Agent0/internal/telemetry"
	"github.com/noah-ing/Agent0/internal/tui/components"
	"github.com/noah-ing/Agent0/internal/tui/styles"
	"github.com/noah-ing/Agent0/internal/tui/views"
	"github.com/noah-ing/Agent0/internal/types"
)

// TelemetryApp is the bubbletea model for the live telemetry dashboard.
// It re-reads the JSONL log on a timer and summarizes whatever is there,
// so it can be attached before the training loop has written anything.
type TelemetryApp struct {
	logPath string
	refresh time.Duration

	stats   telemetry.Stats
	records int
	loaded  bool
	err     error

	width  int
	height int

	view      *views.TelemetryView
	statusBar *components.StatusBar
	keyMap    KeyMap
	theme     *styles.Theme
}

// NewTelemetryApp creates the dashboard over a telemetry log path.
func NewTelemetryApp(logPath string, refresh time.Duration) *TelemetryApp {
	if refresh <= 0 {
		refresh = 5 * time.Second
	}

	app := &TelemetryApp{
		logPath:   logPath,
		refresh:   refresh,
		width:     100,
		height:    30,
		view:      views.NewTelemetryView(),
		statusBar: components.NewStatusBar(100),
		keyMap:    DefaultKeyMap(),
		theme:     styles.DefaultTheme(),
	}
	app.statusBar.SetKeyHints("r refresh | q quit")
	return app
}

// SetMetrics overrides the displayed curriculum and executor keys.
func (a *TelemetryApp) SetMetrics(curriculum, executor []string) {
	a.view.SetMetrics(curriculum, executor)
}

// Init starts the load/tick loop.
func (a *TelemetryApp) Init() tea.Cmd {
	return tea.Batch(a.load(), a.tick())
}

// Update handles messages.
func (a *TelemetryApp) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.view.SetWidth(msg.Width)
		a.statusBar.SetWidth(msg.Width)
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.keyMap.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.keyMap.Refresh):
			return a, a.load()
		}
		return a, nil

	case TickMsg:
		return a, tea.Batch(a.load(), a.tick())

	case StatsMsg:
		a.stats = msg.Stats
		a.records = msg.RecordCount
		a.loaded = true
		a.err = nil
		if msg.RecordCount == 0 {
			a.statusBar.SetStatus("waiting")
			a.statusBar.SetMessage("no telemetry records yet")
		} else {
			a.statusBar.SetStatus("live")
			a.statusBar.SetMessage(statusRecords(msg.RecordCount))
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
func (a *TelemetryApp) View() string {
	title := a.theme.TitleStyle.Render("agent0 telemetry :: " + a.logPath)

	var body string
	switch {
	case a.err != nil && !a.loaded:
		body = a.theme.StatusStalled.Render("load failed: " + a.err.Error())
	case !a.loaded:
		body = a.theme.StatusPending.Render("loading...")
	default:
		body = a.view.Render(a.stats, a.records, a.logPath)
	}

	return title + "\n" + body + "\n" + a.statusBar.Render()
}

// load re-reads and summarizes the telemetry log. A missing log is not
// an error: the dashboard keeps waiting for the first record.
func (a *TelemetryApp) load() tea.Cmd {
	return func() tea.Msg {
		records, err := telemetry.LoadRecords(a.logPath)
		if err != nil {
			if types.IsCode(err, types.REPORT_TELEMETRY_EMPTY) {
				return StatsMsg{RecordCount: 0}
			}
			return ErrorMsg{Err: err}
		}
		return StatsMsg{Stats: telemetry.Summarize(records), RecordCount: len(records)}
	}
}

func (a *TelemetryApp) tick() tea.Cmd {
	return tea.Tick(a.refresh, func(t time.Time) tea.Msg {
		return TickMsg{Timestamp: t}
	})
}

func statusRecords(n int) string {
	if n == 1 {
		return "1 record"
	}
	return fmt.Sprintf("%d records", n)
}
