package executor

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/satishbabariya/querydeck/internal/core/query/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConn(t *testing.T) (*sql.Conn, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	conn, err := db.Conn(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, mock
}

func TestCount(t *testing.T) {
	conn, mock := newConn(t)
	ctx := context.Background()

	stmt := domain.Statement{
		Query:  `SELECT COUNT(*) AS total_count FROM (SELECT * FROM "EMP" WHERE "SAL" > $1) count_src`,
		Params: []domain.Param{{Name: "val0", Value: int64(1000)}},
	}
	mock.ExpectQuery(stmt.Query).
		WithArgs(int64(1000)).
		WillReturnRows(sqlmock.NewRows([]string{"total_count"}).AddRow(25))

	total, err := NewQueryExecutor(domain.PostgreSQL).Count(ctx, conn, stmt)
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountError(t *testing.T) {
	conn, mock := newConn(t)

	mock.ExpectQuery("SELECT 1").WillReturnError(assert.AnError)

	_, err := NewQueryExecutor(domain.PostgreSQL).Count(context.Background(), conn, domain.Statement{Query: "SELECT 1"})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestRows(t *testing.T) {
	conn, mock := newConn(t)
	ctx := context.Background()

	stmt := domain.Statement{Query: `SELECT "ENAME", "SAL", "COMM" FROM "EMP" LIMIT 2 OFFSET 0`}
	mock.ExpectQuery(stmt.Query).
		WillReturnRows(sqlmock.NewRows([]string{"ENAME", "SAL", "COMM"}).
			AddRow([]byte("KING"), int64(5000), nil).
			AddRow("ALLEN", int64(1600), int64(300)))

	columns, rows, err := NewQueryExecutor(domain.PostgreSQL).Rows(ctx, conn, stmt)
	require.NoError(t, err)
	assert.Equal(t, []string{"ENAME", "SAL", "COMM"}, columns)
	require.Len(t, rows, 2)
	assert.Equal(t, "KING", rows[0]["ENAME"])
	assert.Nil(t, rows[0]["COMM"])
	assert.Equal(t, int64(300), rows[1]["COMM"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRowsEmpty(t *testing.T) {
	conn, mock := newConn(t)

	mock.ExpectQuery(`SELECT * FROM "EMP"`).WillReturnRows(sqlmock.NewRows([]string{"ENAME"}))

	_, rows, err := NewQueryExecutor(domain.PostgreSQL).Rows(context.Background(), conn, domain.Statement{Query: `SELECT * FROM "EMP"`})
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestNilConn(t *testing.T) {
	e := NewQueryExecutor(domain.PostgreSQL)
	_, err := e.Count(context.Background(), nil, domain.Statement{})
	assert.Error(t, err)
	_, _, err = e.Rows(context.Background(), nil, domain.Statement{})
	assert.Error(t, err)
}
