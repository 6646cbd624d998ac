package migration

import (
	"errors"
	"fmt"
)

var (
	ErrMigrationFailed      = errors.New("migration execution failed")
	ErrInvalidMigrationFile = errors.New("invalid migration file")
	ErrInvalidVersion       = errors.New("invalid migration version")
	ErrDuplicateVersion     = errors.New("duplicate migration version")
	// ErrChecksumMismatch means an applied migration file was edited afterwards.
	ErrChecksumMismatch = errors.New("migration checksum mismatch")
)

// StepError records which migration step failed. Version and File are empty
// for steps that concern the bookkeeping table rather than one file.
type StepError struct {
	Version string
	File    string
	Step    string
	Err     error
}

func (e *StepError) Error() string {
	switch {
	case e.Version != "" && e.File != "":
		return fmt.Sprintf("migration %s (%s): %s: %v", e.Version, e.File, e.Step, e.Err)
	case e.Version != "":
		return fmt.Sprintf("migration %s: %s: %v", e.Version, e.Step, e.Err)
	case e.File != "":
		return fmt.Sprintf("migration file %s: %s: %v", e.File, e.Step, e.Err)
	default:
		return fmt.Sprintf("migrations: %s: %v", e.Step, e.Err)
	}
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func fileError(version, file, step string, err error) error {
	return &StepError{Version: version, File: file, Step: step, Err: err}
}

func dbError(version, step string, err error) error {
	return &StepError{Version: version, Step: step, Err: err}
}
