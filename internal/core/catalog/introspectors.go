package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/satishbabariya/querydeck/internal/adapters/database"
	"github.com/satishbabariya/querydeck/internal/core/query/domain"
)

// PostgresIntrospector reads information_schema for the current schema.
type PostgresIntrospector struct{}

// Columns implements Introspector.
func (i *PostgresIntrospector) Columns(ctx context.Context, conn database.Conn, table string) ([]domain.Column, error) {
	query := `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = current_schema()
		  AND table_name = $1
		ORDER BY ordinal_position
	`
	return scanInformationSchema(ctx, conn, query, table)
}

// MySQLIntrospector reads information_schema for the connected database.
type MySQLIntrospector struct{}

// Columns implements Introspector.
func (i *MySQLIntrospector) Columns(ctx context.Context, conn database.Conn, table string) ([]domain.Column, error) {
	query := `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		ORDER BY ordinal_position
	`
	return scanInformationSchema(ctx, conn, query, table)
}

func scanInformationSchema(ctx context.Context, conn database.Conn, query, table string) ([]domain.Column, error) {
	rows, err := conn.QueryContext(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %s: %w", table, err)
	}
	defer rows.Close()

	var columns []domain.Column
	for rows.Next() {
		var name, dataType, nullable string
		if err := rows.Scan(&name, &dataType, &nullable); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		columns = append(columns, domain.Column{
			Name:     name,
			Type:     dataType,
			Nullable: strings.EqualFold(nullable, "YES"),
		})
	}
	return columns, rows.Err()
}

// SQLiteIntrospector uses the table_info pragma.
type SQLiteIntrospector struct{}

// FoldsCase reports that SQLite resolves table names case-insensitively.
func (i *SQLiteIntrospector) FoldsCase() bool {
	return true
}

// Columns implements Introspector.
func (i *SQLiteIntrospector) Columns(ctx context.Context, conn database.Conn, table string) ([]domain.Column, error) {
	rows, err := conn.QueryContext(ctx, `SELECT name, type, "notnull" FROM pragma_table_info(?) ORDER BY cid`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %s: %w", table, err)
	}
	defer rows.Close()

	var columns []domain.Column
	for rows.Next() {
		var name, dataType string
		var notNull int
		if err := rows.Scan(&name, &dataType, &notNull); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		columns = append(columns, domain.Column{
			Name:     name,
			Type:     dataType,
			Nullable: notNull == 0,
		})
	}
	return columns, rows.Err()
}
