package persona

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"
)

const settingsFile = "settings.json"

// FileStore persists the persona as a JSON file under the data directory.
// All reads and writes hold the store mutex so a first-read default and a
// concurrent Set cannot interleave their read-modify-write cycles.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create data dir: %v", ErrPersistence, err)
	}
	return &FileStore{path: filepath.Join(dataDir, settingsFile)}, nil
}

func (s *FileStore) Get(_ context.Context) (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, found, err := s.read()
	if err != nil {
		return Config{}, err
	}
	if found {
		return cfg, nil
	}
	if err := s.write(Default); err != nil {
		return Config{}, err
	}
	return Default, nil
}

func (s *FileStore) Set(_ context.Context, cfg Config) (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, found, err := s.read()
	if err != nil {
		return Config{}, err
	}
	if !found {
		current = Default
	}
	next := merge(current, cfg)
	if err := s.write(next); err != nil {
		return Config{}, err
	}
	return next, nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) read() (Config, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, false, nil
		}
		return Config{}, false, fmt.Errorf("%w: read %s: %v", ErrPersistence, s.path, err)
	}
	var cfg Config
	if err := sonic.Unmarshal(data, &cfg); err != nil {
		return Config{}, false, fmt.Errorf("%w: corrupt settings file %s: %v", ErrPersistence, s.path, err)
	}
	return cfg, true, nil
}

// write replaces the settings file atomically via temp file + rename.
func (s *FileStore) write(cfg Config) error {
	data, err := sonic.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode settings: %v", ErrPersistence, err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".settings-*")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ErrPersistence, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write settings: %v", ErrPersistence, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close settings: %v", ErrPersistence, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: replace settings: %v", ErrPersistence, err)
	}
	return nil
}
