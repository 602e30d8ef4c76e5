package audio

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type asset struct {
	data        []byte
	contentType string
}

// InMemoryResolver keeps assets in process memory for local/dev use.
type InMemoryResolver struct {
	mu     sync.RWMutex
	assets map[string]asset
}

func NewInMemoryResolver() *InMemoryResolver {
	return &InMemoryResolver{assets: make(map[string]asset)}
}

func (r *InMemoryResolver) Store(_ context.Context, data []byte, contentType string) (string, error) {
	handle := uuid.NewString()
	buf := make([]byte, len(data))
	copy(buf, data)

	r.mu.Lock()
	r.assets[handle] = asset{data: buf, contentType: contentType}
	r.mu.Unlock()
	return handle, nil
}

func (r *InMemoryResolver) Resolve(_ context.Context, handle string) ([]byte, string, error) {
	r.mu.RLock()
	a, ok := r.assets[handle]
	r.mu.RUnlock()
	if !ok {
		return nil, "", ErrNotFound
	}
	out := make([]byte, len(a.data))
	copy(out, a.data)
	return out, a.contentType, nil
}

func (r *InMemoryResolver) Close() error { return nil }
