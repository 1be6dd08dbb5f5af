/*
errors.go - Error kinds shared by every service

ERROR KINDS:
  InvalidInput:   Missing or malformed fields (dates, ids, statuses)
  NotFound:       Employee or leave request does not exist
  Forbidden:      Leave eligibility gate rejected the request
  Unauthorized:   Credential or token mismatch
  StorageFailure: Backend read or write failed

  A missing backing file on first load is NOT an error: it yields an
  empty document.

USAGE:
  Services wrap the sentinels with context:

    return fmt.Errorf("%w: employee %s", records.ErrNotFound, id)

  Callers match with errors.Is / errors.As, or collapse to a Kind with
  KindOf for transport mapping. Nothing is retried automatically.
*/
package records

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")

	// ErrForbidden is returned when the eligibility gate rejects a leave
	// submission. It is always wrapped by an *IneligibleError.
	ErrForbidden = errors.New("forbidden")

	ErrUnauthorized = errors.New("unauthorized")

	// ErrStorage is returned when the backend cannot be read or written.
	// After a failed flush the mutation may not have persisted.
	ErrStorage = errors.New("storage failure")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// IneligibleError carries the attendance percentage that failed the gate.
type IneligibleError struct {
	EmployeeID string
	Percentage int
	Threshold  int
}

func (e *IneligibleError) Error() string {
	return fmt.Sprintf("attendance percentage is %d%%, at least %d%% is required to take leave",
		e.Percentage, e.Threshold)
}

func (e *IneligibleError) Unwrap() error {
	return ErrForbidden
}

// storageError wraps a backend failure so it matches ErrStorage and the cause.
func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

// =============================================================================
// KINDS
// =============================================================================

// Kind is a stable, transport-independent error classification.
type Kind string

const (
	KindNone         Kind = ""
	KindInvalidInput Kind = "invalid_input"
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindUnauthorized Kind = "unauthorized"
	KindStorage      Kind = "storage_failure"
	KindInternal     Kind = "internal"
)

// KindOf classifies err. Unknown errors are KindInternal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrStorage):
		return KindStorage
	default:
		return KindInternal
	}
}

// IsClientError returns true if the error is due to the caller's input or identity.
func IsClientError(err error) bool {
	switch KindOf(err) {
	case KindInvalidInput, KindNotFound, KindForbidden, KindUnauthorized:
		return true
	}
	return false
}
