package tui

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-ing/Agent0/internal/monitor"
	"github.com/noah-ing/Agent0/internal/runstate"
	"github.com/noah-ing/Agent0/internal/types"
)

func newTestApp(t *testing.T, workDir string, follow bool) *App {
	t.Helper()
	return NewApp(monitor.New(workDir), 10*time.Millisecond, follow)
}

func writeLog(t *testing.T, workDir, dataset, content string) {
	t.Helper()
	logDir := filepath.Join(workDir, "logs", "infer")
	require.NoError(t, os.MkdirAll(logDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(logDir, dataset+".out"), []byte(content), 0o644))
}

func runningSnapshot() monitor.Snapshot {
	return monitor.Snapshot{
		WorkDir: "/tmp/run",
		Status:  types.RunStatusRunning,
		Datasets: []monitor.DatasetView{
			{DatasetStatus: runstate.DatasetStatus{
				Name: "gsm8k", Completed: 64, Total: 128,
				Elapsed: "04:30", Remaining: "04:30", Rate: "4.2s/it",
			}},
		},
		SessionElapsed: 5 * time.Minute,
		TakenAt:        time.Now(),
	}
}

func TestApp_SnapshotUpdatesState(t *testing.T) {
	app := newTestApp(t, t.TempDir(), false)

	model, cmd := app.Update(SnapshotMsg{Snapshot: runningSnapshot()})
	app = model.(*App)
	assert.Nil(t, cmd)

	snap, ok := app.Snapshot()
	require.True(t, ok)
	assert.Equal(t, types.RunStatusRunning, snap.Status)

	view := app.View()
	assert.Contains(t, view, "gsm8k")
	assert.Contains(t, view, "64/128")
	assert.Contains(t, view, "active")
}

func TestApp_QuitsOnCompletionUnlessFollowing(t *testing.T) {
	completed := monitor.Snapshot{
		Status: types.RunStatusCompleted,
		Datasets: []monitor.DatasetView{
			{DatasetStatus: runstate.DatasetStatus{Name: "gsm8k", Completed: 128, Total: 128, Finished: true}},
		},
	}

	app := newTestApp(t, t.TempDir(), false)
	_, cmd := app.Update(SnapshotMsg{Snapshot: completed})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	following := newTestApp(t, t.TempDir(), true)
	_, cmd = following.Update(SnapshotMsg{Snapshot: completed})
	assert.Nil(t, cmd)
}

func TestApp_QuitKey(t *testing.T) {
	app := newTestApp(t, t.TempDir(), false)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_FollowToggle(t *testing.T) {
	app := newTestApp(t, t.TempDir(), false)
	assert.False(t, app.Following())

	model, _ := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}})
	assert.True(t, model.(*App).Following())
}

func TestApp_ErrorShownWithoutSnapshot(t *testing.T) {
	app := newTestApp(t, t.TempDir(), false)

	model, _ := app.Update(ErrorMsg{Err: errors.New("scan failed")})
	view := model.(*App).View()
	assert.Contains(t, view, "scan failed")
}

func TestApp_StalledRowRendered(t *testing.T) {
	snap := runningSnapshot()
	snap.Status = types.RunStatusStalled
	snap.Datasets[0].Stalled = true
	snap.Datasets[0].IdleFor = 6 * time.Minute

	app := newTestApp(t, t.TempDir(), false)
	model, _ := app.Update(SnapshotMsg{Snapshot: snap})

	view := model.(*App).View()
	assert.Contains(t, view, "STALLED")
	assert.Contains(t, view, "6:00")
}

func TestApp_ObserveCommandReadsLogs(t *testing.T) {
	workDir := t.TempDir()
	writeLog(t, workDir, "gsm8k", "10/128 [00:40<07:50,  4.0s/it]\n")

	app := newTestApp(t, workDir, false)
	msg := app.observe()()

	snapMsg, ok := msg.(SnapshotMsg)
	require.True(t, ok)
	assert.Equal(t, types.RunStatusRunning, snapMsg.Snapshot.Status)
	require.Len(t, snapMsg.Snapshot.Datasets, 1)
	assert.Equal(t, 10, snapMsg.Snapshot.Datasets[0].Completed)
}
