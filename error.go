package schemaver

import (
	"errors"
	"fmt"
)

// ErrEmptyCatalog is returned when a plan is requested but no migrations were discovered.
var ErrEmptyCatalog = errors.New("no migrations available")

// DriverError records original sql driver error and supporting info that caused it.
type DriverError struct {
	// Info contains supporting info
	Info string

	// Err is the original (possibly driver-specific) error
	Err error
}

func (e *DriverError) Error() string { return e.Info + ": " + e.Err.Error() }

func (e *DriverError) Unwrap() error { return e.Err }

// ParseError reports a migration source whose version can't be derived from its name.
type ParseError struct {
	Source string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse version from migration %q: %s", e.Source, e.Reason)
}

// DuplicateVersionError reports two migration sources sharing one version.
type DuplicateVersionError struct {
	Version  int64
	Source   string
	Conflict string
}

func (e *DuplicateVersionError) Error() string {
	return fmt.Sprintf("migration %q conflicts with %q: both have version %d", e.Source, e.Conflict, e.Version)
}

// InvalidTargetError reports a requested target outside of [0, max].
type InvalidTargetError struct {
	Target int64
	Max    int64
}

func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("migration %d does not exist (valid targets are 0 to %d)", e.Target, e.Max)
}

// LedgerAccessError reports a failure to read or write the history table
// for any reason other than the table not existing yet.
type LedgerAccessError struct {
	Table string
	Err   error
}

func (e *LedgerAccessError) Error() string {
	return fmt.Sprintf("failed to access history table %q: %v", e.Table, e.Err)
}

func (e *LedgerAccessError) Unwrap() error { return e.Err }

// UnresolvableMigrationError reports a version with no loadable migration.
type UnresolvableMigrationError struct {
	Version int64
	Reason  string
}

func (e *UnresolvableMigrationError) Error() string {
	return fmt.Sprintf("failed to resolve migration %d: %s", e.Version, e.Reason)
}

// StepError marks the plan step that failed. Err is the original error
// returned (or panicked) by the migration body, the ledger update or the commit.
type StepError struct {
	Version   int64
	Direction Direction
	Err       error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("failed to migrate %s %d: %v", e.Direction, e.Version, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// UnderlyingError returns the underlying error from DriverError and StepError.
func UnderlyingError(err error) error {
	for {
		switch e := err.(type) {
		case *DriverError:
			err = e.Err
		case *StepError:
			err = e.Err
		case *LedgerAccessError:
			err = e.Err
		default:
			return err
		}
	}
}
