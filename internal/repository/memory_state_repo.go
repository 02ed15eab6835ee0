package repository

import (
	"context"
	"sync"
)

// MemoryStateRepository keeps states in process memory. Used by default and in tests.
type MemoryStateRepository struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func NewMemoryStateRepository() *MemoryStateRepository {
	return &MemoryStateRepository{items: make(map[string][]byte)}
}

func (r *MemoryStateRepository) Load(ctx context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (r *MemoryStateRepository) Save(ctx context.Context, key string, payload []byte) error {
	v := make([]byte, len(payload))
	copy(v, payload)
	r.mu.Lock()
	r.items[key] = v
	r.mu.Unlock()
	return nil
}

// Len returns the number of stored keys
func (r *MemoryStateRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
