package storage

import (
	"context"
	"fmt"
	"log/slog"
)

// Config controls how the storage backend is opened.
type Config struct {
	// Driver is one of file (default), memory, sqlite or postgres.
	Driver string
	// DSN is the database DSN for sqlite and postgres.
	DSN string
	// Path is the explicit cache file for the file driver; empty means
	// ResolvePath's defaults.
	Path string
}

// Open constructs a Storage based on the given configuration.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	drv := cfg.Driver
	if drv == "" {
		drv = "file"
	}
	switch drv {
	case "file":
		path := ResolvePath(cfg.Path)
		logger.Debug("storage: using file backend", "path", path)
		return NewFileStorage(path), nil

	case "memory":
		logger.Debug("storage: using in-memory backend")
		return NewMemory(), nil

	case "sqlite", "postgres":
		logger.Debug("storage: using gorm backend", "driver", drv)
		st, err := NewGormStorage(drv, cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, fmt.Errorf("storage migrate: %w", err)
		}
		return st, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", drv)
	}
}
