package views

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/noah-ing/Agent0/internal/telemetry"
	"github.com/noah-ing/Agent0/internal/tui/components"
	"github.com/noah-ing/Agent0/internal/tui/styles"
)

// DefaultCurriculumMetrics are the curriculum keys shown by the live
// telemetry dashboard.
var DefaultCurriculumMetrics = []string{
	"curriculum/reward",
	"curriculum/uncertainty",
	"curriculum/tool_usage",
}

// DefaultExecutorMetrics are the executor keys shown by the live
// telemetry dashboard.
var DefaultExecutorMetrics = []string{
	"executor/adv_scaled",
	"rollout/turns",
}

// TelemetryView renders the live telemetry dashboard: curriculum and
// executor metric tables, tool-event percentiles, and the frontier and
// judge rollup.
type TelemetryView struct {
	theme *styles.Theme

	curriculumKeys []string
	executorKeys   []string

	curriculumPanel *components.Panel
	executorPanel   *components.Panel
	toolEventsPanel *components.Panel
	judgePanel      *components.Panel

	width int
}

// NewTelemetryView creates the telemetry view with the default metric
// selections.
func NewTelemetryView() *TelemetryView {
	return &TelemetryView{
		theme:           styles.DefaultTheme(),
		curriculumKeys:  DefaultCurriculumMetrics,
		executorKeys:    DefaultExecutorMetrics,
		curriculumPanel: components.NewPanel("Curriculum"),
		executorPanel:   components.NewPanel("Executor"),
		toolEventsPanel: components.NewPanel("Tool Events"),
		judgePanel:      components.NewPanel("Frontier & Judge"),
		width:           100,
	}
}

// SetMetrics overrides the displayed curriculum and executor keys.
// Empty slices keep the current selection.
func (v *TelemetryView) SetMetrics(curriculum, executor []string) {
	if len(curriculum) > 0 {
		v.curriculumKeys = curriculum
	}
	if len(executor) > 0 {
		v.executorKeys = executor
	}
}

// SetWidth sets the view width.
func (v *TelemetryView) SetWidth(width int) {
	if width > 0 {
		v.width = width
		v.curriculumPanel.SetWidth(width)
		v.executorPanel.SetWidth(width)
		v.toolEventsPanel.SetWidth(width)
		v.judgePanel.SetWidth(width)
	}
}

// Render renders the dashboard panels for a summary. With no records yet
// a waiting notice is shown instead.
func (v *TelemetryView) Render(stats telemetry.Stats, recordCount int, logPath string) string {
	if recordCount == 0 {
		waiting := components.NewPanel("Telemetry")
		waiting.SetWidth(v.width)
		waiting.SetContent(v.theme.StatusPending.Render("waiting for telemetry at " + logPath))
		return waiting.Render()
	}

	v.curriculumPanel.SetContent(v.renderMetricTable(v.curriculumKeys, stats))
	v.executorPanel.SetContent(v.renderMetricTable(v.executorKeys, stats))

	sections := []string{v.curriculumPanel.Render(), v.executorPanel.Render()}

	if len(stats.PercentileStats) > 0 {
		v.toolEventsPanel.SetContent(v.renderPercentileTable(stats))
		sections = append(sections, v.toolEventsPanel.Render())
	}

	v.judgePanel.SetContent(v.renderJudge(stats))
	sections = append(sections, v.judgePanel.Render())

	return strings.Join(sections, "\n")
}

// renderMetricTable renders one row per selected key: mean, std, and
// observation count. Keys with no observations render as dashes.
func (v *TelemetryView) renderMetricTable(keys []string, stats telemetry.Stats) string {
	header := fmt.Sprintf("%-28s %12s %12s %8s", "METRIC", "MEAN", "STD", "COUNT")
	rows := []string{v.theme.HeaderStyle.Render(header)}

	for _, key := range keys {
		mean := "-"
		std := ""
		count := stats.Counts[key]
		if count > 0 {
			mean = fmt.Sprintf("%.4f", stats.Means[key])
		}
		if s, ok := stats.Stds[key]; ok && count > 1 {
			std = fmt.Sprintf("±%.4f", s)
		}
		row := fmt.Sprintf("%-28s %12s %12s %8d", truncateName(key, 28), mean, std, count)
		rows = append(rows, v.theme.RowStyle.Render(row))
	}
	return strings.Join(rows, "\n")
}

func (v *TelemetryView) renderPercentileTable(stats telemetry.Stats) string {
	header := fmt.Sprintf("%-28s %10s %10s %10s", "METRIC", "MEAN", "P50", "P90")
	rows := []string{v.theme.HeaderStyle.Render(header)}

	keys := make([]string, 0, len(stats.PercentileStats))
	for key := range stats.PercentileStats {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		pct := stats.PercentileStats[key]
		row := fmt.Sprintf("%-28s %10.2f %10.2f %10.2f",
			truncateName(key, 28), pct.Mean, pct.P50, pct.P90)
		rows = append(rows, v.theme.RowStyle.Render(row))
	}
	return strings.Join(rows, "\n")
}

// renderJudge renders the judge pass rate and the frontier acceptance
// counters.
func (v *TelemetryView) renderJudge(stats telemetry.Stats) string {
	var lines []string

	if rate, ok := stats.Derived["judge/pass_rate"]; ok {
		pct := rate * 100
		lines = append(lines, v.passRateStyle(pct).Render(
			fmt.Sprintf("Judge pass rate: %.1f%%", pct)))
	} else {
		lines = append(lines, v.theme.StatusPending.Render("Judge pass rate: -"))
	}

	accepted := int(stats.Totals["frontier/accepted"])
	total := stats.Counts["frontier/consistency"]
	if total < 1 {
		total = 1
	}
	lines = append(lines, v.theme.RowStyle.Render(
		fmt.Sprintf("Frontier accepted: %d / %d", accepted, total)))

	rejected := int(stats.Totals["frontier/rejected_repetition"])
	lines = append(lines, v.theme.RowStyle.Render(
		fmt.Sprintf("Rejections (repeat): %d", rejected)))

	return strings.Join(lines, "\n")
}

func (v *TelemetryView) passRateStyle(pct float64) lipgloss.Style {
	switch {
	case pct >= 60:
		return v.theme.StatusDone
	case pct >= 40:
		return v.theme.StatusActive
	default:
		return v.theme.StatusStalled
	}
}
