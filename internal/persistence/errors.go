package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrAlreadyReserved is returned when a conditional reservation matched a slot that is already taken.
	ErrAlreadyReserved = errors.New("persistence: slot already reserved")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrConstraintViolation is returned when a record fails a CHECK or NOT NULL constraint.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrForeignKeyViolation is returned when a referenced record does not exist.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
)
