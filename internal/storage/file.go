package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/seblin/curpy/internal/rates"
)

// FileStorage keeps the snapshot in a single JSON document.
type FileStorage struct {
	path string
}

// NewFileStorage returns a FileStorage for path. Missing parent
// directories are created on the first Save.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Path returns the file location.
func (f *FileStorage) Path() string { return f.path }

func (f *FileStorage) Load(ctx context.Context) (*rates.Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run.
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s: %v", rates.ErrCacheRead, f.path, err)
	}
	snap, err := DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.path, err)
	}
	return &snap, nil
}

func (f *FileStorage) Save(ctx context.Context, snap rates.Snapshot) error {
	data, err := EncodeSnapshot(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := writeFileAtomically(f.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	return nil
}

func (f *FileStorage) Ping(ctx context.Context) error { return nil }

func (f *FileStorage) Close() error { return nil }
