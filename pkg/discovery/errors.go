package discovery

import "errors"

// Common errors returned by the discovery package.
var (
	// ErrDirNotFound is returned when an export directory does not exist.
	ErrDirNotFound = errors.New("export directory not found")

	// ErrNoExportsFound is returned when no export files are discovered.
	ErrNoExportsFound = errors.New("no export files found")

	// ErrInvalidPath is returned when a path is invalid or inaccessible.
	ErrInvalidPath = errors.New("invalid or inaccessible path")
)
