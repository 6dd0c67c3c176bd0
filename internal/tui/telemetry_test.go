package tui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-ing/Agent0/internal/telemetry"
)

func writeTelemetryLog(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "telemetry.jsonl")
	content := ""
	for _, line := range lines {
		content += line + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func sampleStats(t *testing.T) (telemetry.Stats, int) {
	t.Helper()
	records := []telemetry.Record{
		{
			"curriculum/reward":      0.62,
			"curriculum/uncertainty": 0.18,
			"executor/adv_scaled":    0.44,
			"rollout/turns":          4.0,
			"rollout/tool_events":    3.0,
			"judge/is_valid":         true,
			"frontier/accepted":      1.0,
			"frontier/consistency":   0.9,
		},
		{
			"curriculum/reward":   0.38,
			"executor/adv_scaled": 0.52,
			"rollout/turns":       6.0,
			"rollout/tool_events": 5.0,
			"judge/is_valid":      false,
		},
	}
	return telemetry.Summarize(records), len(records)
}

func TestTelemetryApp_StatsRenderDashboard(t *testing.T) {
	app := NewTelemetryApp("reports/telemetry.jsonl", time.Second)

	stats, count := sampleStats(t)
	model, cmd := app.Update(StatsMsg{Stats: stats, RecordCount: count})
	app = model.(*TelemetryApp)
	assert.Nil(t, cmd)

	view := app.View()
	assert.Contains(t, view, "Curriculum")
	assert.Contains(t, view, "curriculum/reward")
	assert.Contains(t, view, "0.5000") // mean of 0.62 and 0.38
	assert.Contains(t, view, "Executor")
	assert.Contains(t, view, "executor/adv_scaled")
	assert.Contains(t, view, "Tool Events")
	assert.Contains(t, view, "rollout/tool_events")
	assert.Contains(t, view, "Judge pass rate: 50.0%")
	assert.Contains(t, view, "Frontier accepted: 1 / 1")
	assert.Contains(t, view, "2 records")
}

func TestTelemetryApp_UnobservedMetricRendersDash(t *testing.T) {
	app := NewTelemetryApp("reports/telemetry.jsonl", time.Second)

	stats := telemetry.Summarize([]telemetry.Record{{"curriculum/reward": 0.5}})
	model, _ := app.Update(StatsMsg{Stats: stats, RecordCount: 1})

	// curriculum/uncertainty has no observations: row shows a dash.
	view := model.(*TelemetryApp).View()
	assert.Contains(t, view, "curriculum/uncertainty")
	assert.Contains(t, view, "Judge pass rate: -")
}

func TestTelemetryApp_WaitsWithoutRecords(t *testing.T) {
	app := NewTelemetryApp("reports/telemetry.jsonl", time.Second)

	model, _ := app.Update(StatsMsg{RecordCount: 0})
	view := model.(*TelemetryApp).View()
	assert.Contains(t, view, "waiting for telemetry at reports/telemetry.jsonl")
}

func TestTelemetryApp_LoadCommandReadsLog(t *testing.T) {
	path := writeTelemetryLog(t,
		`{"curriculum/reward": 0.5, "judge/is_valid": true}`,
		`{"curriculum/reward": 0.7, "judge/is_valid": true}`,
	)

	app := NewTelemetryApp(path, time.Second)
	msg := app.load()()

	statsMsg, ok := msg.(StatsMsg)
	require.True(t, ok)
	assert.Equal(t, 2, statsMsg.RecordCount)
	assert.InDelta(t, 0.6, statsMsg.Stats.Means["curriculum/reward"], 1e-9)
}

func TestTelemetryApp_LoadMissingLogKeepsWaiting(t *testing.T) {
	app := NewTelemetryApp(filepath.Join(t.TempDir(), "absent.jsonl"), time.Second)

	msg := app.load()()
	statsMsg, ok := msg.(StatsMsg)
	require.True(t, ok)
	assert.Equal(t, 0, statsMsg.RecordCount)
}

func TestTelemetryApp_QuitKey(t *testing.T) {
	app := NewTelemetryApp("reports/telemetry.jsonl", time.Second)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestTelemetryApp_RefreshKeyTriggersLoad(t *testing.T) {
	path := writeTelemetryLog(t, `{"curriculum/reward": 0.5}`)
	app := NewTelemetryApp(path, time.Second)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	require.NotNil(t, cmd)

	statsMsg, ok := cmd().(StatsMsg)
	require.True(t, ok)
	assert.Equal(t, 1, statsMsg.RecordCount)
}
