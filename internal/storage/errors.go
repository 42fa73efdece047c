package storage

import "errors"

// Storage errors for the audit-trail stores.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when attempting to insert a record with a
	// key that already exists. The audit trail is append-only.
	ErrDuplicateKey = errors.New("duplicate key: audit trail is append-only")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
