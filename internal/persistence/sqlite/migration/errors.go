package migration

import (
	"errors"
	"fmt"
)

var (
	// ErrMigrationFailed indicates that a migration's SQL failed to execute.
	ErrMigrationFailed = errors.New("migration execution failed")

	// ErrRepairFailed indicates that a schema repair could not be applied.
	ErrRepairFailed = errors.New("schema repair failed")

	// ErrProbeFailed indicates that querying table or column metadata failed.
	ErrProbeFailed = errors.New("schema probe failed")
)

// AcquireError reports that no database connection could be borrowed for the
// startup pass. It is the only error the pass surfaces to its caller.
type AcquireError struct {
	Err error
}

func (e *AcquireError) Error() string {
	return fmt.Sprintf("failed to acquire database connection for migrations: %v", e.Err)
}

func (e *AcquireError) Unwrap() error { return e.Err }

// ProbeError wraps a failure while checking table or column metadata during
// the repair pass. The offending rule is skipped and the pass continues.
type ProbeError struct {
	Table  string
	Column string
	Err    error
}

func (e *ProbeError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("probe of %s.%s failed: %v", e.Table, e.Column, e.Err)
	}
	return fmt.Sprintf("probe of table %s failed: %v", e.Table, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

func (e *ProbeError) Is(target error) bool { return target == ErrProbeFailed }

// RepairError wraps a failure while applying a schema repair. The repair is
// skipped and the remaining repairs still run.
type RepairError struct {
	Table  string
	Column string
	Err    error
}

func (e *RepairError) Error() string {
	return fmt.Sprintf("repair of %s.%s failed: %v", e.Table, e.Column, e.Err)
}

func (e *RepairError) Unwrap() error { return e.Err }

func (e *RepairError) Is(target error) bool { return target == ErrRepairFailed }

// ApplyError wraps a failure while executing a migration's SQL. The id stays
// unrecorded and the sequence continues with the next migration.
type ApplyError struct {
	ID   int
	Name string
	Err  error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("migration %d (%s) failed: %v", e.ID, e.Name, e.Err)
}

func (e *ApplyError) Unwrap() error { return e.Err }

func (e *ApplyError) Is(target error) bool { return target == ErrMigrationFailed }
