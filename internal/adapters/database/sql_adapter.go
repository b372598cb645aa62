package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Classifier recognises driver-specific failures.
type Classifier func(err error) (Category, bool)

// SQLAdapter implements Adapter on top of database/sql.
// Dialect packages embed it and supply the driver name and error classifier.
type SQLAdapter struct {
	driver   string
	dialect  SQLDialect
	config   Config
	classify Classifier
	db       *sql.DB
}

// NewSQLAdapter creates an adapter that opens driver on Connect.
func NewSQLAdapter(driver string, dialect SQLDialect, config Config, classify Classifier) *SQLAdapter {
	return &SQLAdapter{
		driver:   driver,
		dialect:  dialect,
		config:   config,
		classify: classify,
	}
}

// OpenDB wraps an already opened *sql.DB.
func OpenDB(dialect SQLDialect, db *sql.DB, classify Classifier) *SQLAdapter {
	return &SQLAdapter{
		dialect:  dialect,
		classify: classify,
		db:       db,
	}
}

// Connect establishes a connection to the database.
func (a *SQLAdapter) Connect(ctx context.Context) error {
	if a.db != nil {
		return nil
	}

	db, err := sql.Open(a.driver, a.config.URL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool settings
	if a.config.MaxConnections > 0 {
		db.SetMaxOpenConns(a.config.MaxConnections)
		db.SetMaxIdleConns(max(a.config.MaxConnections/2, 1))
	}
	if a.config.MaxIdleTime > 0 {
		db.SetConnMaxIdleTime(time.Duration(a.config.MaxIdleTime) * time.Second)
	}

	// Test the connection
	if a.config.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(a.config.ConnectTimeout)*time.Second)
		defer cancel()
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return a.TranslateError(fmt.Errorf("failed to ping database: %w", err))
	}

	a.db = db
	return nil
}

// Disconnect closes the database connection.
func (a *SQLAdapter) Disconnect(ctx context.Context) error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// Acquire checks out a dedicated connection from the pool.
func (a *SQLAdapter) Acquire(ctx context.Context) (Conn, error) {
	if a.db == nil {
		return nil, fmt.Errorf("database not connected")
	}
	conn, err := a.db.Conn(ctx)
	if err != nil {
		return nil, a.TranslateError(fmt.Errorf("failed to acquire connection: %w", err))
	}
	return conn, nil
}

// Ping checks if the database connection is alive.
func (a *SQLAdapter) Ping(ctx context.Context) error {
	if a.db == nil {
		return fmt.Errorf("database not connected")
	}
	return a.TranslateError(a.db.PingContext(ctx))
}

// GetDialect returns the SQL dialect.
func (a *SQLAdapter) GetDialect() SQLDialect {
	return a.dialect
}

// TranslateError maps driver failures to user-facing categories.
func (a *SQLAdapter) TranslateError(err error) error {
	return Translate(err, a.classify)
}

// DB returns the underlying handle, nil before Connect.
func (a *SQLAdapter) DB() *sql.DB {
	return a.db
}

// Ensure SQLAdapter implements Adapter interface.
var _ Adapter = (*SQLAdapter)(nil)
