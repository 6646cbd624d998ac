package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a member or slot does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrConflict is returned when a slot was taken by someone else first.
	ErrConflict = errors.New("application: conflict")
	// ErrStorage marks failures of a backing store. The core never retries them.
	ErrStorage = errors.New("application: storage unavailable")
)

// storageError wraps err so that errors.Is(err, ErrStorage) holds while the
// original cause stays reachable.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStorage) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

// ValidationError lists what was wrong with a date or time the member typed,
// keyed by field.
type ValidationError struct {
	FieldErrors map[string]string
}

func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field, msg := range v.FieldErrors {
		fields = append(fields, field+": "+msg)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, "; ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
