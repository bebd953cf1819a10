package store

import "errors"

// Sentinel errors returned by backends.
var (
	// ErrNotFound means the backend holds no league document.
	ErrNotFound = errors.New("league state not found")
	// ErrCorrupt means a stored document could not be decoded.
	ErrCorrupt = errors.New("stored league state is corrupt")
)
