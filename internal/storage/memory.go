package storage

import (
	"context"
	"sync"

	"github.com/seblin/curpy/internal/rates"
)

// MemoryStorage is an in-memory Storage implementation, useful for tests and
// for serve deployments without a writable disk.
type MemoryStorage struct {
	mu    sync.RWMutex
	snap  *rates.Snapshot
	saves int
}

// NewMemory returns an empty MemoryStorage.
func NewMemory() *MemoryStorage {
	return &MemoryStorage{}
}

// NewMemoryWithSnapshot returns a MemoryStorage preloaded with snap.
func NewMemoryWithSnapshot(snap rates.Snapshot) *MemoryStorage {
	return &MemoryStorage{snap: &snap}
}

func (m *MemoryStorage) Load(ctx context.Context) (*rates.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.snap == nil {
		return nil, nil
	}
	cp := *m.snap
	return &cp, nil
}

func (m *MemoryStorage) Save(ctx context.Context, snap rates.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = &snap
	m.saves++
	return nil
}

// Saves reports how many times Save was called.
func (m *MemoryStorage) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

func (m *MemoryStorage) Ping(ctx context.Context) error { return nil }

func (m *MemoryStorage) Close() error { return nil }
