package application

import (
	"errors"
	"fmt"

	"github.com/example/workspace-planner/internal/allocation"
	"github.com/example/workspace-planner/internal/directory"
	"github.com/example/workspace-planner/internal/floorplan"
)

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrRoomNotFound is returned when a booking or check-in names an unknown room.
	ErrRoomNotFound = allocation.ErrRoomNotFound
	// ErrAlreadyExists is returned when registering a duplicate account.
	ErrAlreadyExists = directory.ErrAlreadyExists
	// ErrInvalidCredentials is returned when a login does not match any account.
	ErrInvalidCredentials = directory.ErrInvalidCredentials
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
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

func (v *ValidationError) merge(fields map[string]string) {
	for field, msg := range fields {
		v.add(field, msg)
	}
}

// StaleVersionError reports that a write lost the optimistic race. Latest is
// the authoritative plan at the time of rejection.
type StaleVersionError struct {
	Latest floorplan.FloorPlan
}

func (e *StaleVersionError) Error() string {
	return fmt.Sprintf("stale version: floor plan is at version %d", e.Latest.Version)
}
