package lookup

import (
	"sync"

	"github.com/mjholt/invoice-analyzer/pkg/logger"
)

// memoryStore implements Store using an in-memory map.
// Useful for testing.
type memoryStore struct {
	volumes map[int]*Volume
	log     logger.Logger
	mu      sync.RWMutex
}

// NewMemoryStore creates an in-memory volume store.
//
// Returns a configured Store.
// Useful for testing or when persistence is not needed.
func NewMemoryStore(log logger.Logger) Store {
	if log == nil {
		log = logger.Noop()
	}
	return &memoryStore{
		volumes: make(map[int]*Volume),
		log:     log,
	}
}

// Put implements Store.Put.
func (s *memoryStore) Put(volume *Volume) error {
	if volume == nil || volume.ID <= 0 {
		return ErrInvalidVolumeID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *volume
	s.volumes[volume.ID] = &copied
	return nil
}

// Get implements Store.Get.
func (s *memoryStore) Get(id int) (*Volume, error) {
	if id <= 0 {
		return nil, ErrInvalidVolumeID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	volume, exists := s.volumes[id]
	if !exists {
		return nil, ErrVolumeNotFound
	}

	copied := *volume
	return &copied, nil
}

// List implements Store.List.
func (s *memoryStore) List() ([]*Volume, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	volumes := make([]*Volume, 0, len(s.volumes))
	for _, v := range s.volumes {
		copied := *v
		volumes = append(volumes, &copied)
	}
	return volumes, nil
}

// Notes implements Store.Notes.
func (s *memoryStore) Notes(id int) (string, bool) {
	volume, err := s.Get(id)
	if err != nil {
		return "", false
	}
	return volume.Notes, true
}

// Import implements Store.Import.
func (s *memoryStore) Import(path string) (int, error) {
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
	return count, nil
}

// Close implements Store.Close.
func (s *memoryStore) Close() error {
	return nil
}
