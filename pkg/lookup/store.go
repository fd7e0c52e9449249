package lookup

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/mjholt/invoice-analyzer/pkg/logger"
)

// Bucket names.
var (
	bucketVolumes = []byte("volumes") // decimal id -> Volume JSON
)

// boltStore implements the Store interface using BoltDB.
type boltStore struct {
	db  *bolt.DB
	log logger.Logger
}

// New creates a BoltDB-backed volume store.
//
// Parameters:
//   - cfg: Store configuration
//   - log: Logger instance
//
// Returns:
//   - Configured Store
//   - Error if database cannot be opened
func New(cfg Config, log logger.Logger) (Store, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}
	if log == nil {
		log = logger.Noop()
	}

	dbPath := expandHome(cfg.DBPath)

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(bucketVolumes)
		return createErr
	}); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("failed to close database after initialization error",
				"error", closeErr)
		}
		return nil, fmt.Errorf("failed to create volumes bucket: %w", err)
	}

	log.Info("volume store initialized", "db_path", dbPath)

	return &boltStore{db: db, log: log}, nil
}

// Put implements Store.Put.
func (s *boltStore) Put(volume *Volume) error {
	if volume == nil || volume.ID <= 0 {
		return ErrInvalidVolumeID
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(volume)
		if err != nil {
			return fmt.Errorf("failed to marshal volume: %w", err)
		}

		if putErr := tx.Bucket(bucketVolumes).Put(volumeKey(volume.ID), data); putErr != nil {
			return fmt.Errorf("failed to store volume: %w", putErr)
		}
		return nil
	})
}

// Get implements Store.Get.
func (s *boltStore) Get(id int) (*Volume, error) {
	if id <= 0 {
		return nil, ErrInvalidVolumeID
	}

	var volume *Volume

	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketVolumes).Get(volumeKey(id))
		if data == nil {
			return ErrVolumeNotFound
		}

		var v Volume
		if unmarshalErr := json.Unmarshal(data, &v); unmarshalErr != nil {
			return fmt.Errorf("failed to unmarshal volume: %w", unmarshalErr)
		}

		volume = &v
		return nil
	})

	if err != nil {
		return nil, err
	}

	return volume, nil
}

// List implements Store.List.
func (s *boltStore) List() ([]*Volume, error) {
	volumes := make([]*Volume, 0, 10)

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketVolumes).ForEach(func(k, v []byte) error {
			var volume Volume
			if unmarshalErr := json.Unmarshal(v, &volume); unmarshalErr != nil {
				s.log.Warn("failed to unmarshal volume",
					"id", string(k),
					"error", unmarshalErr)
				return nil // Skip invalid entries.
			}

			volumes = append(volumes, &volume)
			return nil
		})
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list volumes: %w", err)
	}

	return volumes, nil
}

// Notes implements Store.Notes.
func (s *boltStore) Notes(id int) (string, bool) {
	volume, err := s.Get(id)
	if err != nil {
		if !errors.Is(err, ErrVolumeNotFound) {
			s.log.Warn("volume lookup failed", "id", id, "error", err)
		}
		return "", false
	}
	return volume.Notes, true
}

// Import implements Store.Import.
func (s *boltStore) Import(path string) (int, error) {
	volumes, err := readExport(path)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, v := range volumes {
		if err := s.Put(v); err != nil {
			s.log.Warn("skipping volume record", "id", v.ID, "error", err)
			continue
		}
		count++
	}

	s.log.Info("volume import complete", "path", path, "stored", count)
	return count, nil
}

// Close implements Store.Close.
func (s *boltStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// readExport loads a JSON inventory export: an array of volume
// records. Notes arrive percent-encoded from the inventory API and are
// decoded here; a string that fails decoding is kept as-is.
func readExport(path string) ([]*Volume, error) {
	// #nosec G304: path is validated by caller
	data, err := os.ReadFile(path) // nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("failed to read export file: %w", err)
	}

	var volumes []*Volume
	if err := json.Unmarshal(data, &volumes); err != nil {
		return nil, fmt.Errorf("failed to parse export file: %w", err)
	}

	for _, v := range volumes {
		if decoded, decodeErr := url.QueryUnescape(v.Notes); decodeErr == nil {
			v.Notes = decoded
		}
	}

	return volumes, nil
}

// volumeKey encodes a resource id as a bucket key.
func volumeKey(id int) []byte {
	return []byte(strconv.Itoa(id))
}

// expandHome expands ~ in file paths to the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return homeDir
	}

	return filepath.Join(homeDir, path[2:])
}
