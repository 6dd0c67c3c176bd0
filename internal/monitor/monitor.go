// Package monitor implements the progress monitor for long-running
// evaluation runs: a polling loop over a run directory's on-disk state,
// per-dataset completion tracking, and stall detection.
//
// The monitor observes only. It never cancels, retries, or otherwise
// touches the run; the evaluation platform remains the single writer of
// the work directory.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/noah-ing/Agent0/internal/runstate"
	"github.com/noah-ing/Agent0/internal/types"
)

// DefaultStallThreshold is the idle window after which an unfinished
// dataset is flagged as stalled.
const DefaultStallThreshold = 5 * time.Minute

// DefaultRefresh is the default polling cadence.
const DefaultRefresh = 5 * time.Second

// DatasetView is a DatasetStatus annotated with monitor-derived state.
type DatasetView struct {
	runstate.DatasetStatus

	// Stalled is true when the dataset is unfinished and idle for
	// longer than the stall threshold.
	Stalled bool `json:"stalled"`

	// IdleFor is how long the dataset has gone without progress.
	IdleFor time.Duration `json:"idle_for"`
}

// Snapshot is one observation of a run, suitable for rendering.
type Snapshot struct {
	// WorkDir is the run directory under observation.
	WorkDir string `json:"work_dir"`

	// Datasets holds per-dataset views sorted by name.
	Datasets []DatasetView `json:"datasets"`

	// Status is the derived run status.
	Status types.RunStatus `json:"status"`

	// SessionElapsed is time since the monitor started.
	SessionElapsed time.Duration `json:"session_elapsed"`

	// LastChange is the newest observed activity, zero when none.
	LastChange time.Time `json:"last_change"`

	// TakenAt is when the snapshot was taken.
	TakenAt time.Time `json:"taken_at"`
}

// Completed reports whether every known dataset finished.
// A snapshot with no datasets is never complete.
func (s Snapshot) Completed() bool {
	return s.Status == types.RunStatusCompleted
}

// Stalled reports whether any dataset is currently flagged as stalled.
func (s Snapshot) Stalled() bool {
	for _, d := range s.Datasets {
		if d.Stalled {
			return true
		}
	}
	return false
}

// TotalProgress returns the summed completed and total counters.
func (s Snapshot) TotalProgress() (completed, total int) {
	for _, d := range s.Datasets {
		completed += d.Completed
		total += d.Total
	}
	return completed, total
}

// Monitor polls a run directory and produces snapshots.
// It is safe for concurrent use; Observe and Watch may be called from
// different goroutines.
type Monitor struct {
	mu sync.Mutex

	scanner        *runstate.Scanner
	stallThreshold time.Duration
	refresh        time.Duration
	startTime      time.Time

	now func() time.Time
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithStallThreshold overrides the stall detection window.
func WithStallThreshold(d time.Duration) Option {
	return func(m *Monitor) { m.stallThreshold = d }
}

// WithRefresh overrides the polling cadence used by Watch.
func WithRefresh(d time.Duration) Option {
	return func(m *Monitor) { m.refresh = d }
}

// withClock overrides the time source, for tests.
func withClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// New creates a Monitor over the given run directory.
func New(workDir string, opts ...Option) *Monitor {
	m := &Monitor{
		scanner:        runstate.NewScanner(workDir),
		stallThreshold: DefaultStallThreshold,
		refresh:        DefaultRefresh,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.startTime = m.now()
	return m
}

// WorkDir returns the run directory under observation.
func (m *Monitor) WorkDir() string {
	return m.scanner.WorkDir()
}

// Observe performs one scan of the run directory and returns a snapshot.
func (m *Monitor) Observe() (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	statuses, err := m.scanner.Scan()
	if err != nil {
		return Snapshot{}, types.WrapError(types.RUN_SCAN_FAILED, "failed to scan run directory", err)
	}

	now := m.now()
	snap := Snapshot{
		WorkDir:        m.scanner.WorkDir(),
		Datasets:       make([]DatasetView, 0, len(statuses)),
		SessionElapsed: now.Sub(m.startTime),
		LastChange:     m.scanner.LastChange(),
		TakenAt:        now,
	}

	for _, status := range statuses {
		view := DatasetView{
			DatasetStatus: status,
			IdleFor:       status.IdleFor(now),
		}
		view.Stalled = IsStalled(status.LastUpdate, now, m.stallThreshold) && !status.Finished
		snap.Datasets = append(snap.Datasets, view)
	}

	snap.Status = deriveStatus(snap)
	return snap, nil
}

// Watch polls the run directory until the context is cancelled or, when
// stopOnComplete is set, until the run completes. Snapshots are sent on
// the returned channel, which is closed when the loop exits.
func (m *Monitor) Watch(ctx context.Context, stopOnComplete bool) <-chan Snapshot {
	out := make(chan Snapshot, 1)

	go func() {
		defer close(out)

		ticker := time.NewTicker(m.refresh)
		defer ticker.Stop()

		for {
			snap, err := m.Observe()
			if err == nil {
				select {
				case out <- snap:
				case <-ctx.Done():
					return
				}
				if stopOnComplete && snap.Completed() {
					return
				}
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// IsStalled implements the stall boundary: true when lastChange is more
// than threshold in the past, false at or inside the threshold.
func IsStalled(lastChange, now time.Time, threshold time.Duration) bool {
	if lastChange.IsZero() {
		return false
	}
	return now.Sub(lastChange) > threshold
}

// deriveStatus maps a snapshot onto the run status lifecycle.
func deriveStatus(snap Snapshot) types.RunStatus {
	if len(snap.Datasets) == 0 {
		return types.RunStatusPending
	}

	allFinished := true
	for _, d := range snap.Datasets {
		if !d.Finished {
			allFinished = false
			break
		}
	}
	if allFinished {
		return types.RunStatusCompleted
	}

	for _, d := range snap.Datasets {
		if d.Stalled {
			return types.RunStatusStalled
		}
	}
	return types.RunStatusRunning
}
