// Package sqlite implements SQLite database adapter.
package sqlite

import (
	"errors"

	"github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/satishbabariya/querydeck/internal/adapters/database"
)

// SQLiteAdapter implements the database.Adapter interface for SQLite.
type SQLiteAdapter struct {
	*database.SQLAdapter
}

// NewSQLiteAdapter creates a new SQLite adapter.
func NewSQLiteAdapter(config database.Config) (*SQLiteAdapter, error) {
	// SQLite only supports one writer; reads share the single connection.
	if config.MaxConnections == 0 {
		config.MaxConnections = 1
	}
	return &SQLiteAdapter{
		SQLAdapter: database.NewSQLAdapter("sqlite3", database.SQLite, config, Classify),
	}, nil
}

// Classify recognises SQLite result codes.
func Classify(err error) (database.Category, bool) {
	var liteErr sqlite3.Error
	if !errors.As(err, &liteErr) {
		return "", false
	}

	switch liteErr.Code {
	case sqlite3.ErrCantOpen, sqlite3.ErrNotADB:
		return database.CategoryUnknownService, true
	case sqlite3.ErrAuth, sqlite3.ErrPerm:
		return database.CategoryBadCredentials, true
	}
	return "", false
}

// Ensure SQLiteAdapter implements Adapter interface.
var _ database.Adapter = (*SQLiteAdapter)(nil)
