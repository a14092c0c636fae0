package storage

import "errors"

// Storage errors shared by all store implementations.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when attempting to insert a record
	// with a key that already exists.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")

	// ErrVersionConflict is returned by compare-and-swap writes when the
	// stored version no longer matches the expected one. Callers re-read
	// and retry; the write is never partially applied.
	ErrVersionConflict = errors.New("version conflict")

	// ErrIdentityConflict is returned when a concurrent first-sighting
	// race leaves the conflicting identity row unreadable. Should not
	// occur in a correctly merged store, but is surfaced, not swallowed.
	ErrIdentityConflict = errors.New("identity conflict")
)
