package storage

import "errors"

// Storage errors shared by all RecordStore implementations.
var (
	// ErrNotFound is returned when a requested dataset does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable is returned when the backing store cannot be reached.
	// Surfaced to the user as a non-fatal warning for the affected view.
	ErrUnavailable = errors.New("data source unavailable")
)
