package store

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/hyperengineering/nextbest/internal/types"
)

// MemoryStore is a process-local Store used for ephemeral runs and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	values  map[string]string
	updated *time.Time
	closed  bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) GetValue(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", ErrClosed
	}
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) PutValues(ctx context.Context, values map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	maps.Copy(m.values, values)
	now := time.Now().UTC()
	m.updated = &now
	return nil
}

func (m *MemoryStore) DeleteValues(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func (m *MemoryStore) GetStats(ctx context.Context) (*types.StoreStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &types.StoreStats{KeyCount: int64(len(m.values)), LastUpdated: m.updated}, nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
