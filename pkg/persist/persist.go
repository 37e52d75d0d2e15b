package persist

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned by Load when no state has been saved yet.
var ErrNotFound = errors.New("no persisted state")

// BlobStore persists the whole chat state as a single opaque blob.
// Save overwrites the previous snapshot; the in-memory state is the source
// of truth, so last-write-wins is the intended behavior.
type BlobStore interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

// FileStore keeps the snapshot in a single JSON file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

var _ BlobStore = (*FileStore)(nil)

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "could not read state file %s", s.path)
	}
	return data, nil
}

func (s *FileStore) Save(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "could not create state directory %s", dir)
	}

	// Write to a temp file first so a crash mid-write never corrupts the
	// previous snapshot.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrapf(err, "could not write state file %s", tmp)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrapf(err, "could not replace state file %s", s.path)
	}

	log.Trace().Str("path", s.path).Int("bytes", len(data)).Msg("saved chat state")
	return nil
}

// MemoryStore holds the snapshot in memory. Used in tests and as a
// fallback when no state file is configured.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

var _ BlobStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, ErrNotFound
	}
	ret := make([]byte, len(s.data))
	copy(ret, s.data)
	return ret, nil
}

func (s *MemoryStore) Save(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make([]byte, len(data))
	copy(s.data, data)
	return nil
}
