// Package storage provides the backends thumbnails and originals are
// persisted to.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when reading a file that does not exist.
	ErrNotFound = errors.New("file not found in storage")

	// ErrInvalidName rejects names escaping the storage root.
	ErrInvalidName = errors.New("invalid storage name")
)

// WriteResult describes a stored file.
type WriteResult struct {
	Name string
	Size int
}

// Storage persists files by name. Save overwrites any existing file
// with the same name. Implementations must be safe for concurrent use
// on distinct names.
type Storage interface {
	Save(ctx context.Context, name string, data []byte) (WriteResult, error)
	Exists(ctx context.Context, name string) (bool, error)
	Delete(ctx context.Context, name string) error
	Read(ctx context.Context, name string) ([]byte, error)
	URL(name string) string
}
