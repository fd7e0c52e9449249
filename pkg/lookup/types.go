// Package lookup stores network storage volume metadata keyed by the
// resource id that billing items reference, so reports can attach the
// operator notes of the volume behind each storage charge.
//
// The store is populated from a JSON inventory export and persisted in
// BoltDB; an in-memory variant exists for tests. Lookups are exposed
// as an `id -> (record, exists)` function so consumers stay decoupled
// from the storage engine.
//
// Example usage:
//
//	store, err := lookup.New(lookup.Config{DBPath: "~/.invoice-analyzer/volumes.db"}, log)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//	n := normalizer.New(calc, store.Notes, log)
package lookup

import "time"

// Volume is the inventory record of one network storage volume.
//
// Invariant: ID must be positive; it is the resource table id that
// billing items link to.
type Volume struct {
	ID              int       `json:"id"`
	BillingItemID   int       `json:"billingItemId"`
	CreateDate      time.Time `json:"createDate"`
	CapacityGB      float64   `json:"capacityGb"`
	NasType         string    `json:"nasType"`
	Notes           string    `json:"notes"`
	Username        string    `json:"username"`
	ProvisionedIOPS float64   `json:"provisionedIops"`
}

// IOPSTier derives the provisioned IOPS-per-GB tier. Zero capacity
// yields zero rather than dividing.
func (v *Volume) IOPSTier() float64 {
	if v.CapacityGB <= 0 {
		return 0
	}
	tier := v.ProvisionedIOPS / v.CapacityGB
	return float64(int64(tier + 0.5))
}

// Store provides access to volume metadata.
type Store interface {
	// Put stores or replaces a volume record.
	//
	// Returns ErrInvalidVolumeID if the record has a non-positive id.
	Put(volume *Volume) error

	// Get returns the volume with the given resource id.
	//
	// Returns ErrVolumeNotFound if no such volume is stored.
	Get(id int) (*Volume, error)

	// List returns all stored volumes in unspecified order.
	List() ([]*Volume, error)

	// Notes resolves a resource id to the volume's operator notes.
	// The second return reports whether the volume exists; callers
	// treat a missing volume as deleted, not as an error.
	Notes(id int) (string, bool)

	// Import loads volume records from a JSON inventory export file
	// and returns the number of records stored. Records with invalid
	// ids are skipped with a warning.
	Import(path string) (int, error)

	// Close releases the underlying database.
	Close() error
}

// Config contains store configuration.
type Config struct {
	// DBPath is the BoltDB file location. A leading ~ expands to the
	// user's home directory.
	DBPath string

	// Timeout bounds the wait for the database file lock.
	Timeout time.Duration
}
