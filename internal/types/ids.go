package types

import "github.com/google/uuid"

// ID identifies one harness-initiated evaluation launch. Runs the
// harness merely observes are identified by their work-dir path; an ID
// exists only for launches this process started, and correlates the
// driver's log entries and trace spans with the reported result.
type ID string

// NewID returns a fresh random run identifier.
func NewID() ID {
	return ID(uuid.New().String())
}

// String returns the string representation of the ID.
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the ID is unset.
func (id ID) IsZero() bool {
	return id == ""
}
