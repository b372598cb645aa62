// Package storage provides storage adapter interfaces.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Read when the path does not exist.
var ErrNotFound = errors.New("storage: file not found")

// Storage defines the storage adapter interface.
type Storage interface {
	// Read reads contents from a path.
	Read(ctx context.Context, path string) ([]byte, error)

	// Write replaces the contents at path.
	Write(ctx context.Context, path string, content []byte) error

	// Exists checks if a path exists.
	Exists(ctx context.Context, path string) (bool, error)

	// Location returns the resolved location of path, for display and watching.
	Location(path string) string
}

// Config holds storage configuration.
type Config struct {
	// Type is the storage type (filesystem, memory).
	Type string

	// BasePath is the directory relative paths resolve against, for every kind.
	BasePath string
}
