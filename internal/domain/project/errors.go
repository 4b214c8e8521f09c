package project

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrProjectNotFound indicates the project record or its artifact doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrInvalidInput indicates invalid project input.
	ErrInvalidInput = errors.New("invalid project input")
	// ErrBusy indicates another mutation of the same project is in flight.
	ErrBusy = errors.New("project is busy")
	// ErrInconsistent indicates the artifact and the catalog were updated
	// only partially. The operation can be retried.
	ErrInconsistent = errors.New("project catalog and artifact are out of sync")
	// ErrPartialMigration indicates some artifacts stayed in the old location.
	ErrPartialMigration = errors.New("storage migration incomplete")
)

// PartialMigrationError lists the ids that failed to move and the pending
// locations that could not be reached.
type PartialMigrationError struct {
	IDs         []string
	Unavailable []string
}

func (e *PartialMigrationError) Error() string {
	msg := fmt.Sprintf("%s: %d artifact(s) not moved", ErrPartialMigration, len(e.IDs))
	if len(e.IDs) > 0 {
		msg += ": " + strings.Join(e.IDs, ", ")
	}
	if len(e.Unavailable) > 0 {
		msg += "; unavailable locations: " + strings.Join(e.Unavailable, ", ")
	}
	return msg
}

// Is lets errors.Is match ErrPartialMigration.
func (e *PartialMigrationError) Is(target error) bool {
	return target == ErrPartialMigration
}
