package tui

import (
	"time"

	"github.com/noah-ing/Agent0/internal/monitor"
	"github.com/noah-ing/Agent0/internal/telemetry"
)

// TickMsg drives the periodic refresh.
type TickMsg struct {
	Timestamp time.Time
}

// SnapshotMsg carries a fresh monitor observation.
type SnapshotMsg struct {
	Snapshot monitor.Snapshot
}

// StatsMsg carries a fresh telemetry summary.
type StatsMsg struct {
	Stats       telemetry.Stats
	RecordCount int
}

// ErrorMsg reports a failed observation.
type ErrorMsg struct {
	Err error
}
