// Package backup writes and reads exported league documents on disk.
package backup

import "errors"

var (
	// ErrBackupNotFound indicates the requested backup does not exist.
	ErrBackupNotFound = errors.New("backup not found")

	// ErrInvalidName indicates a name that is not a backup file name.
	ErrInvalidName = errors.New("invalid backup name")
)
