package models

import "errors"

// Sentinel errors for the application-wide error taxonomy. Callers classify
// wrapped errors with errors.Is.
var (
	// ErrNotFound indicates an operation targeted an ID that no longer exists.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates invalid input; the operation was aborted before
	// any state mutation.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidRate indicates a zero or negative conversion rate.
	ErrInvalidRate = errors.New("conversion rate must be positive")

	// ErrStorage indicates a persistence read/write failure.
	ErrStorage = errors.New("storage failure")

	// ErrSync indicates a remote sync failure. Always non-fatal.
	ErrSync = errors.New("sync failure")
)
