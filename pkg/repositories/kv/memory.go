package kv

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu     sync.RWMutex
	values map[string]string
}

func (r *memoryRepository) Get(_ context.Context, key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (r *memoryRepository) Set(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.values[key] = value
	return nil
}

func (r *memoryRepository) Remove(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.values, key)
	return nil
}

func NewMemoryRepository() Repository {
	return &memoryRepository{
		values: make(map[string]string),
	}
}
