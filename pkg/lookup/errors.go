package lookup

import "errors"

// Common errors returned by the lookup package.
var (
	// ErrVolumeNotFound is returned when no volume with the requested id exists.
	ErrVolumeNotFound = errors.New("volume not found")

	// ErrInvalidVolumeID is returned when a volume record has a non-positive id.
	ErrInvalidVolumeID = errors.New("invalid volume id: must be positive")
)
