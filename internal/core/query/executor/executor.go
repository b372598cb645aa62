// Package executor implements query execution.
package executor

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/satishbabariya/querydeck/internal/adapters/database"
	"github.com/satishbabariya/querydeck/internal/core/query/compiler"
	"github.com/satishbabariya/querydeck/internal/core/query/domain"
)

// QueryExecutor runs compiled statements on an acquired connection.
type QueryExecutor struct {
	dialect domain.SQLDialect
}

// NewQueryExecutor creates a new query executor.
func NewQueryExecutor(dialect domain.SQLDialect) *QueryExecutor {
	return &QueryExecutor{dialect: dialect}
}

// Count runs a count statement and returns its single value.
func (e *QueryExecutor) Count(ctx context.Context, conn database.Conn, stmt domain.Statement) (int64, error) {
	if conn == nil {
		return 0, fmt.Errorf("connection not acquired")
	}

	var total sql.NullInt64
	row := conn.QueryRowContext(ctx, stmt.Query, compiler.Args(e.dialect, stmt)...)
	if err := row.Scan(&total); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to execute count: %w", err)
	}
	return total.Int64, nil
}

// Rows runs a select statement and returns its columns and rows in order.
func (e *QueryExecutor) Rows(ctx context.Context, conn database.Conn, stmt domain.Statement) ([]string, []domain.Row, error) {
	if conn == nil {
		return nil, nil, fmt.Errorf("connection not acquired")
	}

	rows, err := conn.QueryContext(ctx, stmt.Query, compiler.Args(e.dialect, stmt)...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get columns: %w", err)
	}

	results := make([]domain.Row, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, nil, fmt.Errorf("failed to scan row: %w", err)
		}

		result := make(domain.Row, len(columns))
		for i, col := range columns {
			val := values[i]
			// Text columns arrive as []byte from most drivers
			if b, ok := val.([]byte); ok {
				result[col] = string(b)
			} else {
				result[col] = val
			}
		}

		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return columns, results, nil
}
