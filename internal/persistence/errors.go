package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrInvalidRecord is returned when a record is missing its key or version.
	ErrInvalidRecord = errors.New("persistence: invalid record")
)
