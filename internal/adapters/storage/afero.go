package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FileStorage implements Storage on top of an afero filesystem.
type FileStorage struct {
	fs       afero.Fs
	basePath string
}

// NewFilesystemStorage creates a storage rooted at basePath on the OS filesystem.
func NewFilesystemStorage(basePath string) *FileStorage {
	return &FileStorage{fs: afero.NewOsFs(), basePath: basePath}
}

// NewMemoryStorage creates an in-memory storage adapter.
func NewMemoryStorage() *FileStorage {
	return &FileStorage{fs: afero.NewMemMapFs(), basePath: "/"}
}

// NewFileStorage wraps an arbitrary afero filesystem.
func NewFileStorage(fs afero.Fs, basePath string) *FileStorage {
	return &FileStorage{fs: fs, basePath: basePath}
}

// Location resolves a path relative to the base path.
func (s *FileStorage) Location(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.basePath, path)
}

// Read reads contents from a path.
func (s *FileStorage) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := afero.ReadFile(s.fs, s.Location(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return content, nil
}

// Write writes to a sibling temp file and renames it over path.
func (s *FileStorage) Write(ctx context.Context, path string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath := s.Location(path)
	if err := s.fs.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp := fullPath + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, content, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := s.fs.Rename(tmp, fullPath); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}

// Exists checks if a path exists.
func (s *FileStorage) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	ok, err := afero.Exists(s.fs, s.Location(path))
	if err != nil {
		return false, fmt.Errorf("failed to check file: %w", err)
	}
	return ok, nil
}

// Ensure FileStorage implements Storage interface.
var _ Storage = (*FileStorage)(nil)
