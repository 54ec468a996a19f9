package storage

import "errors"

var (
	// ErrNotFound means no persisted state exists yet. Expected on first run;
	// callers supply a default aggregate.
	ErrNotFound = errors.New("state file not found")

	// ErrCorrupt means state exists but does not decode. Callers fall back to
	// a fresh default state and surface a non-fatal warning.
	ErrCorrupt = errors.New("state file corrupt")

	// ErrConflict means another process saved between this caller's load and
	// save. The whole read-modify-write cycle must be retried.
	ErrConflict = errors.New("state modified concurrently")
)
