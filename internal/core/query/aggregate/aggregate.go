// Package aggregate computes per-row derived columns from aggregate specs.
package aggregate

import (
	"strings"

	"github.com/satishbabariya/querydeck/internal/core/query/domain"
	"github.com/shopspring/decimal"
)

// CountAllLabel is the output name of a COUNT without columns and without alias.
const CountAllLabel = "count_all"

// Label returns the output column name of an aggregate.
// Every caller that needs an aggregate's key or display name must go through here.
func Label(spec domain.AggregateSpec) string {
	if spec.Alias != "" {
		return spec.Alias
	}
	if normalizeFunc(spec.Type) == domain.Count && len(spec.Columns) == 0 {
		return CountAllLabel
	}
	return strings.ToLower(string(spec.Type)) + "_" + strings.Join(spec.Columns, "_")
}

// Labels returns the labels of every applicable spec, in order.
func Labels(specs []domain.AggregateSpec) []string {
	var labels []string
	for _, spec := range specs {
		if !Applicable(spec) {
			continue
		}
		labels = append(labels, Label(spec))
	}
	return labels
}

// Applicable reports whether a spec produces a column.
// SUM and AVG need at least one column; unknown types produce nothing.
func Applicable(spec domain.AggregateSpec) bool {
	switch normalizeFunc(spec.Type) {
	case domain.Sum, domain.Avg:
		return len(spec.Columns) > 0
	case domain.Count:
		return true
	}
	return false
}

// Apply returns copies of rows with one extra field per applicable spec.
// Input rows are not modified. Specs are evaluated in order so a COUNT
// without columns sees aggregate fields added before it.
func Apply(rows []domain.Row, specs []domain.AggregateSpec) []domain.Row {
	if len(specs) == 0 {
		return rows
	}

	out := make([]domain.Row, len(rows))
	for i, row := range rows {
		next := make(domain.Row, len(row)+len(specs))
		for k, v := range row {
			next[k] = v
		}
		for _, spec := range specs {
			if !Applicable(spec) {
				continue
			}
			label := Label(spec)
			next[label] = evaluate(next, spec, label)
		}
		out[i] = next
	}
	return out
}

func evaluate(row domain.Row, spec domain.AggregateSpec, label string) interface{} {
	switch normalizeFunc(spec.Type) {
	case domain.Sum:
		sum, n := sumColumns(row, spec.Columns)
		if n == 0 {
			return nil
		}
		return sum.InexactFloat64()
	case domain.Avg:
		sum, n := sumColumns(row, spec.Columns)
		if n == 0 {
			return nil
		}
		return sum.Div(decimal.NewFromInt(int64(n))).InexactFloat64()
	case domain.Count:
		if len(spec.Columns) > 0 {
			var n int64
			for _, col := range spec.Columns {
				if !isNull(row[col]) {
					n++
				}
			}
			return n
		}
		// The count itself is a non-null field of the row.
		n := int64(1)
		for k, v := range row {
			if k == label {
				continue
			}
			if !isNull(v) {
				n++
			}
		}
		return n
	}
	return nil
}

func sumColumns(row domain.Row, columns []string) (decimal.Decimal, int) {
	sum := decimal.Zero
	n := 0
	for _, col := range columns {
		d, ok := toDecimal(row[col])
		if !ok {
			continue
		}
		sum = sum.Add(d)
		n++
	}
	return sum, n
}

func normalizeFunc(f domain.AggregateFunc) domain.AggregateFunc {
	return domain.AggregateFunc(strings.ToUpper(string(f)))
}
