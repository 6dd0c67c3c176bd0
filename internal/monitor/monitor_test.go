package monitor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-ing/Agent0/internal/types"
)

func writeLog(t *testing.T, workDir, dataset, content string) string {
	t.Helper()
	logDir := filepath.Join(workDir, "logs", "infer")
	require.NoError(t, os.MkdirAll(logDir, 0o755))
	path := filepath.Join(logDir, dataset+".out")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIsStalled_Boundary(t *testing.T) {
	now := time.Now()
	threshold := 5 * time.Minute

	tests := []struct {
		name       string
		lastChange time.Time
		want       bool
	}{
		{name: "just over threshold", lastChange: now.Add(-threshold - time.Second), want: true},
		{name: "far past threshold", lastChange: now.Add(-time.Hour), want: true},
		{name: "exactly at threshold", lastChange: now.Add(-threshold), want: false},
		{name: "inside threshold", lastChange: now.Add(-threshold + time.Second), want: false},
		{name: "fresh", lastChange: now, want: false},
		{name: "zero time never stalls", lastChange: time.Time{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsStalled(tt.lastChange, now, threshold))
		})
	}
}

func TestMonitor_Observe_Running(t *testing.T) {
	workDir := t.TempDir()
	writeLog(t, workDir, "gsm8k", "10/128 [00:40<07:50,  4.0s/it]\n")

	m := New(workDir)
	snap, err := m.Observe()
	require.NoError(t, err)

	require.Len(t, snap.Datasets, 1)
	assert.Equal(t, types.RunStatusRunning, snap.Status)
	assert.False(t, snap.Stalled())
	assert.False(t, snap.Completed())

	completed, total := snap.TotalProgress()
	assert.Equal(t, 10, completed)
	assert.Equal(t, 128, total)
}

func TestMonitor_Observe_Pending(t *testing.T) {
	m := New(t.TempDir())
	snap, err := m.Observe()
	require.NoError(t, err)

	assert.Equal(t, types.RunStatusPending, snap.Status)
	assert.Empty(t, snap.Datasets)
	assert.False(t, snap.Completed())
}

func TestMonitor_Observe_Completed(t *testing.T) {
	workDir := t.TempDir()
	writeLog(t, workDir, "gsm8k", "128/128 [09:40<00:00,  4.5s/it]\n")
	writeLog(t, workDir, "math", "500/500 [33:00<00:00,  4.0s/it]\n")

	m := New(workDir)
	snap, err := m.Observe()
	require.NoError(t, err)

	assert.Equal(t, types.RunStatusCompleted, snap.Status)
	assert.True(t, snap.Completed())
	assert.False(t, snap.Stalled())
}

func TestMonitor_Observe_Stalled(t *testing.T) {
	workDir := t.TempDir()
	writeLog(t, workDir, "gsm8k", "10/128 [00:40<07:50,  4.0s/it]\n")

	current := time.Now()
	clock := &current
	m := New(workDir, withClock(func() time.Time { return *clock }))

	snap, err := m.Observe()
	require.NoError(t, err)
	assert.Equal(t, types.RunStatusStalled.IsTerminal(), false)
	assert.Equal(t, types.RunStatusRunning, snap.Status)

	// Advance the clock past the threshold with no new bytes.
	current = current.Add(DefaultStallThreshold + time.Second)

	snap, err = m.Observe()
	require.NoError(t, err)
	assert.Equal(t, types.RunStatusStalled, snap.Status)
	assert.True(t, snap.Stalled())
	require.Len(t, snap.Datasets, 1)
	assert.True(t, snap.Datasets[0].Stalled)
	assert.Greater(t, snap.Datasets[0].IdleFor, DefaultStallThreshold)
}

func TestMonitor_Observe_StaleRunStalledOnFirstObservation(t *testing.T) {
	workDir := t.TempDir()
	path := writeLog(t, workDir, "gsm8k", "10/128 [00:40<07:50,  4.0s/it]\n")

	stale := time.Now().Add(-DefaultStallThreshold - time.Minute)
	require.NoError(t, os.Chtimes(path, stale, stale))

	m := New(workDir)
	snap, err := m.Observe()
	require.NoError(t, err)

	assert.Equal(t, types.RunStatusStalled, snap.Status)
	assert.True(t, snap.Stalled())
	require.Len(t, snap.Datasets, 1)
	assert.Greater(t, snap.Datasets[0].IdleFor, DefaultStallThreshold)
}

func TestMonitor_Observe_FinishedDatasetNeverStalls(t *testing.T) {
	workDir := t.TempDir()
	writeLog(t, workDir, "gsm8k", "128/128 [09:40<00:00,  4.5s/it]\n")

	current := time.Now()
	clock := &current
	m := New(workDir, withClock(func() time.Time { return *clock }))

	_, err := m.Observe()
	require.NoError(t, err)

	current = current.Add(time.Hour)

	snap, err := m.Observe()
	require.NoError(t, err)
	assert.Equal(t, types.RunStatusCompleted, snap.Status)
	assert.False(t, snap.Stalled())
}

func TestMonitor_Observe_MixedStallAndFinished(t *testing.T) {
	workDir := t.TempDir()
	writeLog(t, workDir, "gsm8k", "128/128 [09:40<00:00,  4.5s/it]\n")
	writeLog(t, workDir, "math", "12/500 [01:00<40:00,  4.9s/it]\n")

	current := time.Now()
	clock := &current
	m := New(workDir, withClock(func() time.Time { return *clock }))

	_, err := m.Observe()
	require.NoError(t, err)

	current = current.Add(10 * time.Minute)

	snap, err := m.Observe()
	require.NoError(t, err)
	assert.Equal(t, types.RunStatusStalled, snap.Status)

	byName := make(map[string]DatasetView)
	for _, d := range snap.Datasets {
		byName[d.Name] = d
	}
	assert.False(t, byName["gsm8k"].Stalled)
	assert.True(t, byName["math"].Stalled)
}

func TestMonitor_Watch_StopsOnComplete(t *testing.T) {
	workDir := t.TempDir()
	writeLog(t, workDir, "gsm8k", "128/128 [09:40<00:00,  4.5s/it]\n")

	m := New(workDir, WithRefresh(10*time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var last Snapshot
	for snap := range m.Watch(ctx, true) {
		last = snap
	}
	assert.True(t, last.Completed())
}

func TestMonitor_Watch_CancelClosesChannel(t *testing.T) {
	workDir := t.TempDir()
	writeLog(t, workDir, "gsm8k", "10/128 [00:40<07:50,  4.0s/it]\n")

	m := New(workDir, WithRefresh(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	ch := m.Watch(ctx, false)

	// Drain one snapshot, then cancel.
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("no snapshot received")
	}
	cancel()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel not closed after cancel")
		}
	}
}
