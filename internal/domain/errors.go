package domain

import (
	"errors"
	"fmt"
)

// Error types for consistent error handling across the BFA.
// Messages returned by Error() are developer-facing; the handler layer
// translates each type into a short Persian message for the end user.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrExternalService indicates a failure in a backend call.
// StatusCode is zero for transport failures (no response received).
type ErrExternalService struct {
	Service    string
	StatusCode int
	Detail     string
	Err        error
}

func (e *ErrExternalService) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("external service error [%s] status=%d: %v", e.Service, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// IsStatus reports whether err carries a backend response with the given HTTP status.
func IsStatus(err error, status int) bool {
	var ext *ErrExternalService
	return errors.As(err, &ext) && ext.StatusCode == status
}

// ErrTimeout indicates an operation exceeded its deadline.
type ErrTimeout struct {
	Operation string
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("operation timed out: %s", e.Operation)
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrValidation indicates bad input caught before any backend call.
// Message is already user-facing Persian text.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrForbidden indicates the caller lacks permission for the operation.
type ErrForbidden struct {
	Action string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Action)
}

// ErrUnauthorized indicates an invalid or missing token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrNoOwnUnit is returned when a resident is denied the building-wide
// debt/credit view and none of the building's units belongs to them.
type ErrNoOwnUnit struct {
	BuildingID string
}

func (e *ErrNoOwnUnit) Error() string {
	return fmt.Sprintf("no unit resolvable for caller in building %s", e.BuildingID)
}

// ErrNothingToExport is returned when an export is requested over an empty set.
type ErrNothingToExport struct {
	Export string
}

func (e *ErrNothingToExport) Error() string {
	return fmt.Sprintf("nothing to export: %s", e.Export)
}

// ErrConflict indicates a resource already exists (e.g. duplicate expense type).
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}
