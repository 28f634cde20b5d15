package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrWriteRejected is returned when the backing store refuses a
	// write (authorization policy, constraint violation).
	ErrWriteRejected = errors.New("write rejected by store")

	// ErrConflict is returned when a conditional update finds the row
	// in a state that does not admit the change.
	ErrConflict = errors.New("conflicting concurrent update")
)
