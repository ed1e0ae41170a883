package penpal

import (
	"context"
	"fmt"
	"sync"
)

var _ Storage = &MemoryStorage{}

// MemoryStorage is a simple in-memory implementation of the Storage interface.
type MemoryStorage struct {
	mu      sync.RWMutex
	storage map[string]string
}

// NewMemoryStorage creates a new instance of MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		storage: make(map[string]string),
	}
}

func (m *MemoryStorage) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if val, exists := m.storage[key]; exists {
		return val, nil
	}
	return "", fmt.Errorf("key %s: %w", key, ErrNotFound)
}

func (m *MemoryStorage) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storage[key] = value
	return nil
}

func (m *MemoryStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.storage, key)
	return nil
}
