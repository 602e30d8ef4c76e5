package persona

import (
	"context"
	"sync"
)

// InMemoryStore is a simple in-process persona store for local/dev use.
type InMemoryStore struct {
	mu     sync.RWMutex
	cfg    Config
	stored bool
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Get(_ context.Context) (Config, error) {
	s.mu.RLock()
	if s.stored {
		cfg := s.cfg
		s.mu.RUnlock()
		return cfg, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stored {
		s.cfg = Default
		s.stored = true
	}
	return s.cfg, nil
}

func (s *InMemoryStore) Set(_ context.Context, cfg Config) (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.cfg
	if !s.stored {
		current = Default
	}
	s.cfg = merge(current, cfg)
	s.stored = true
	return s.cfg, nil
}

func (s *InMemoryStore) Close() error { return nil }
