package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Kind names a storage backend.
type Kind string

const (
	// KindFilesystem persists collections on the OS filesystem.
	KindFilesystem Kind = "filesystem"

	// KindMemory keeps collections in memory for the life of the process.
	KindMemory Kind = "memory"
)

// New opens the backend named by cfg.Type rooted at cfg.BasePath.
func New(cfg Config) (Storage, error) {
	base := cfg.BasePath
	if base == "" {
		base = "."
	}

	switch Kind(strings.ToLower(strings.TrimSpace(cfg.Type))) {
	case KindFilesystem, "":
		return NewFilesystemStorage(base), nil
	case KindMemory:
		return NewFileStorage(afero.NewMemMapFs(), base), nil
	default:
		return nil, fmt.Errorf("unknown storage type %q (want %s or %s)", cfg.Type, KindFilesystem, KindMemory)
	}
}

// ForCollection opens the backend holding a saved-query collection file.
// The storage is rooted at the file's directory and the returned name is
// the file inside it, so Location reports the configured path for every kind.
func ForCollection(kind, path string) (Storage, string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, "", fmt.Errorf("saved-query collection path is empty")
	}

	s, err := New(Config{Type: kind, BasePath: filepath.Dir(path)})
	if err != nil {
		return nil, "", err
	}
	return s, filepath.Base(path), nil
}
