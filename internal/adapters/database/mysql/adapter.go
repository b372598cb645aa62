// Package mysql implements MySQL database adapter.
package mysql

import (
	"errors"

	"github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/satishbabariya/querydeck/internal/adapters/database"
)

// MySQLAdapter implements the database.Adapter interface for MySQL.
type MySQLAdapter struct {
	*database.SQLAdapter
}

// NewMySQLAdapter creates a new MySQL adapter.
func NewMySQLAdapter(config database.Config) (*MySQLAdapter, error) {
	return &MySQLAdapter{
		SQLAdapter: database.NewSQLAdapter("mysql", database.MySQL, config, Classify),
	}, nil
}

// Classify recognises MySQL server error numbers.
func Classify(err error) (database.Category, bool) {
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) {
		return "", false
	}

	switch myErr.Number {
	case 1045: // ER_ACCESS_DENIED_ERROR
		return database.CategoryBadCredentials, true
	case 1049: // ER_BAD_DB_ERROR
		return database.CategoryUnknownService, true
	case 2002, 2003, 2005: // CR_CONNECTION_ERROR, CR_CONN_HOST_ERROR, CR_UNKNOWN_HOST
		return database.CategoryHostUnreachable, true
	}
	return "", false
}

// Ensure MySQLAdapter implements Adapter interface.
var _ database.Adapter = (*MySQLAdapter)(nil)
