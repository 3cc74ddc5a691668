package storage

import (
	"context"

	"github.com/seblin/curpy/internal/rates"
)

// Storage persists the latest rates snapshot. It satisfies rates.Cache.
type Storage interface {
	// Load returns (nil, nil) when nothing has been stored yet. A store
	// that exists but cannot be decoded yields an error wrapping
	// rates.ErrCacheRead.
	Load(ctx context.Context) (*rates.Snapshot, error)
	// Save replaces the stored snapshot. Saving identical content again is
	// allowed.
	Save(ctx context.Context, snap rates.Snapshot) error

	Ping(ctx context.Context) error
	// Close releases any resources (no-op for file and in-memory).
	Close() error
}

var (
	_ rates.Cache = (Storage)(nil)
	_ Storage     = (*FileStorage)(nil)
	_ Storage     = (*MemoryStorage)(nil)
	_ Storage     = (*GormStorage)(nil)
)
