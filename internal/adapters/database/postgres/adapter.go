// Package postgres implements PostgreSQL database adapter.
package postgres

import (
	"errors"

	"github.com/lib/pq" // PostgreSQL driver
	"github.com/satishbabariya/querydeck/internal/adapters/database"
)

// PostgresAdapter implements the database.Adapter interface for PostgreSQL.
type PostgresAdapter struct {
	*database.SQLAdapter
}

// NewPostgresAdapter creates a new PostgreSQL adapter.
func NewPostgresAdapter(config database.Config) (*PostgresAdapter, error) {
	return &PostgresAdapter{
		SQLAdapter: database.NewSQLAdapter("postgres", database.PostgreSQL, config, Classify),
	}, nil
}

// Classify recognises PostgreSQL SQLSTATE codes.
func Classify(err error) (database.Category, bool) {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return "", false
	}

	switch pqErr.Code {
	case "28P01", "28000": // invalid_password, invalid_authorization_specification
		return database.CategoryBadCredentials, true
	case "3D000": // invalid_catalog_name
		return database.CategoryUnknownService, true
	case "08001", "08006": // sqlclient_unable_to_establish_sqlconnection, connection_failure
		return database.CategoryHostUnreachable, true
	}
	return "", false
}

// Ensure PostgresAdapter implements Adapter interface.
var _ database.Adapter = (*PostgresAdapter)(nil)
