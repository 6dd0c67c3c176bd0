// Package views renders the dashboard views from monitor snapshots.
package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/noah-ing/Agent0/internal/monitor"
	"github.com/noah-ing/Agent0/internal/tui/components"
	"github.com/noah-ing/Agent0/internal/tui/styles"
	"github.com/noah-ing/Agent0/internal/types"
)

// MonitorView renders the dataset progress table and the run summary.
type MonitorView struct {
	theme        *styles.Theme
	datasetPanel *components.Panel
	summaryPanel *components.Panel
	width        int
}

// NewMonitorView creates the monitor view.
func NewMonitorView() *MonitorView {
	return &MonitorView{
		theme:        styles.DefaultTheme(),
		datasetPanel: components.NewPanel("Datasets"),
		summaryPanel: components.NewPanel("Run"),
		width:        100,
	}
}

// SetWidth sets the view width.
func (v *MonitorView) SetWidth(width int) {
	if width > 0 {
		v.width = width
		v.datasetPanel.SetWidth(width)
		v.summaryPanel.SetWidth(width)
	}
}

// Render renders both panels for a snapshot.
func (v *MonitorView) Render(snap monitor.Snapshot) string {
	v.datasetPanel.SetContent(v.renderTable(snap))
	v.summaryPanel.SetContent(v.renderSummary(snap))
	return v.summaryPanel.Render() + "\n" + v.datasetPanel.Render()
}

// renderTable renders one row per dataset: name, progress, elapsed, ETA,
// rate, and status.
func (v *MonitorView) renderTable(snap monitor.Snapshot) string {
	if len(snap.Datasets) == 0 {
		return v.theme.StatusPending.Render("waiting for inference logs...")
	}

	header := fmt.Sprintf("%-32s %-18s %-10s %-10s %-12s %s",
		"DATASET", "PROGRESS", "ELAPSED", "ETA", "RATE", "STATUS")
	rows := []string{v.theme.HeaderStyle.Render(header)}

	for _, d := range snap.Datasets {
		progress := fmt.Sprintf("%d/%d (%.1f%%)", d.Completed, d.Total, d.Percent())
		row := fmt.Sprintf("%-32s %-18s %-10s %-10s %-12s %s",
			truncateName(d.Name, 32), progress,
			orPlaceholder(d.Elapsed), orPlaceholder(d.Remaining), orPlaceholder(d.Rate),
			v.statusLabel(d))
		rows = append(rows, v.rowStyle(d).Render(row))
	}
	return strings.Join(rows, "\n")
}

// renderSummary renders the work dir, session elapsed, overall progress
// and run status.
func (v *MonitorView) renderSummary(snap monitor.Snapshot) string {
	completed, total := snap.TotalProgress()
	overall := "n/a"
	if total > 0 {
		overall = fmt.Sprintf("%d/%d (%.1f%%)", completed, total,
			float64(completed)/float64(total)*100)
	}

	lines := []string{
		fmt.Sprintf("work dir: %s", snap.WorkDir),
		fmt.Sprintf("session:  %s    overall: %s    status: %s",
			formatDuration(snap.SessionElapsed), overall,
			v.runStatusStyle(snap.Status).Render(string(snap.Status))),
	}
	return strings.Join(lines, "\n")
}

func (v *MonitorView) rowStyle(d monitor.DatasetView) lipgloss.Style {
	switch {
	case d.Stalled:
		return v.theme.StatusStalled
	case d.Finished:
		return v.theme.StatusDone
	default:
		return v.theme.RowStyle
	}
}

func (v *MonitorView) statusLabel(d monitor.DatasetView) string {
	switch {
	case d.Stalled:
		return fmt.Sprintf("STALLED (idle %s)", formatDuration(d.IdleFor))
	case d.Finished:
		return "done"
	default:
		return "active"
	}
}

func (v *MonitorView) runStatusStyle(status types.RunStatus) lipgloss.Style {
	switch status {
	case types.RunStatusCompleted:
		return v.theme.StatusDone
	case types.RunStatusStalled:
		return v.theme.StatusStalled
	case types.RunStatusRunning:
		return v.theme.StatusActive
	default:
		return v.theme.StatusPending
	}
}

func truncateName(name string, max int) string {
	if len(name) <= max {
		return name
	}
	return name[:max-3] + "..."
}

func orPlaceholder(s string) string {
	if s == "" {
		return "--"
	}
	return s
}

// formatDuration renders a duration as h:mm:ss or m:ss.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
