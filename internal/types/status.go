package types

import "fmt"

// RunStatus describes the observed lifecycle state of an evaluation run.
// The harness never transitions a run itself; status is derived from the
// on-disk state written by the external evaluation platform.
type RunStatus string

const (
	// RunStatusPending means the work directory exists but no inference
	// logs have appeared yet.
	RunStatusPending RunStatus = "pending"

	// RunStatusRunning means at least one dataset is reporting progress.
	RunStatusRunning RunStatus = "running"

	// RunStatusStalled means no on-disk change has been observed for
	// longer than the configured stall threshold.
	RunStatusStalled RunStatus = "stalled"

	// RunStatusCompleted means every known dataset finished.
	RunStatusCompleted RunStatus = "completed"

	// RunStatusFailed means the driver subprocess exited non-zero.
	RunStatusFailed RunStatus = "failed"
)

// Validate checks that the status is one of the known values.
func (s RunStatus) Validate() error {
	switch s {
	case RunStatusPending, RunStatusRunning, RunStatusStalled,
		RunStatusCompleted, RunStatusFailed:
		return nil
	}
	return fmt.Errorf("invalid run status: %q", string(s))
}

// String returns the string representation of the status.
func (s RunStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the run can no longer make progress.
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed
}
