package ui

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/satishbabariya/querydeck/internal/core/query/domain"
)

// NullText is how SQL NULL is displayed.
const NullText = "NULL"

// FormatValue renders one cell.
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return NullText
	case string:
		return val
	case []byte:
		return string(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}

// ResultRows converts rows to table cells following columns.
func ResultRows(columns []string, rows []domain.Row) [][]string {
	cells := make([][]string, len(rows))
	for i, row := range rows {
		line := make([]string, len(columns))
		for j, col := range columns {
			line[j] = FormatValue(row[col])
		}
		cells[i] = line
	}
	return cells
}

// RenderResult writes a result table followed by a pagination summary.
func RenderResult(w io.Writer, result *domain.Result) error {
	if len(result.Rows) == 0 {
		fmt.Fprintln(w, SecondaryStyle.Render("(no rows)"))
	} else if err := RenderTable(w, result.Columns, ResultRows(result.Columns, result.Rows)); err != nil {
		return err
	}

	_, err := fmt.Fprintln(w, PaginationSummary(result.Pagination))
	return err
}

// PaginationSummary describes the window shown.
func PaginationSummary(p domain.PaginationState) string {
	muted := color.New(color.FgHiBlack)
	if p.PageSize <= 0 {
		return muted.Sprintf("%d rows", p.TotalCount)
	}

	summary := fmt.Sprintf("page %d of %d · %d rows total", p.CurrentPage, p.TotalPages, p.TotalCount)
	if first := int64(p.Offset()) + 1; first <= p.TotalCount {
		last := min(int64(p.Offset()+p.PageSize), p.TotalCount)
		summary = fmt.Sprintf("page %d of %d · rows %d-%d of %d", p.CurrentPage, p.TotalPages, first, last, p.TotalCount)
	}
	if p.HasNextPage {
		summary += " · more available with --page " + strconv.Itoa(p.CurrentPage+1)
	}
	return muted.Sprint(summary)
}
