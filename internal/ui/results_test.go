package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/satishbabariya/querydeck/internal/core/query/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{nil, "NULL"},
		{"KING", "KING"},
		{[]byte("CLERK"), "CLERK"},
		{int64(5000), "5000"},
		{1250.5, "1250.5"},
		{true, "true"},
		{time.Date(1981, 11, 17, 0, 0, 0, 0, time.UTC), "1981-11-17T00:00:00Z"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.in))
	}
}

func TestResultRows(t *testing.T) {
	rows := []domain.Row{
		{"ENAME": "KING", "SAL": int64(5000), "count_all": int64(3)},
		{"ENAME": "FORD", "SAL": nil, "count_all": int64(2)},
	}
	got := ResultRows([]string{"ENAME", "SAL", "count_all"}, rows)
	assert.Equal(t, [][]string{
		{"KING", "5000", "3"},
		{"FORD", "NULL", "2"},
	}, got)
}

func TestPaginationSummary(t *testing.T) {
	color.NoColor = true

	assert.Equal(t, "page 1 of 3 · rows 1-10 of 25 · more available with --page 2",
		PaginationSummary(domain.NewPaginationState(1, 10, 25)))
	assert.Equal(t, "page 3 of 3 · rows 21-25 of 25",
		PaginationSummary(domain.NewPaginationState(3, 10, 25)))
	assert.Equal(t, "page 5 of 3 · 25 rows total",
		PaginationSummary(domain.NewPaginationState(5, 10, 25)))
	assert.Equal(t, "page 1 of 0 · 0 rows total",
		PaginationSummary(domain.NewPaginationState(1, 10, 0)))
	assert.Equal(t, "7 rows", PaginationSummary(domain.NewPaginationState(1, 0, 7)))
}

func TestRenderResult(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer

	err := RenderResult(&buf, &domain.Result{
		Columns:    []string{"ENAME"},
		Rows:       []domain.Row{{"ENAME": "KING"}},
		Pagination: domain.NewPaginationState(1, 10, 1),
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "KING")
	assert.Contains(t, buf.String(), "page 1 of 1")
}
