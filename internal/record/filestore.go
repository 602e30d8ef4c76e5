package record

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

const recordsFile = "records.json"

// FileStore persists the log as a single JSON array on disk. The whole-log
// read-modify-write cycle on append is serialized by the store mutex, and the
// rewritten file lands via temp file + rename, so a crash mid-append leaves
// the previous log intact and concurrent appends cannot overwrite each other.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create data dir: %v", ErrPersistence, err)
	}
	return &FileStore{path: filepath.Join(dataDir, recordsFile)}, nil
}

func (s *FileStore) Append(_ context.Context, turn Turn) error {
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	turns, err := s.read()
	if err != nil {
		return err
	}
	turns = append(turns, turn)
	return s.write(turns)
}

func (s *FileStore) List(_ context.Context) ([]Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) read() ([]Turn, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read %s: %v", ErrPersistence, s.path, err)
	}
	var turns []Turn
	if err := sonic.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("%w: corrupt records file %s: %v", ErrPersistence, s.path, err)
	}
	return turns, nil
}

func (s *FileStore) write(turns []Turn) error {
	data, err := sonic.MarshalIndent(turns, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode records: %v", ErrPersistence, err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".records-*")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ErrPersistence, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write records: %v", ErrPersistence, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close records: %v", ErrPersistence, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: replace records: %v", ErrPersistence, err)
	}
	return nil
}
