// Package domain contains the saved-query entities shared by the repository and its callers.
package domain

import (
	"strings"
	"time"

	query "github.com/satishbabariya/querydeck/internal/core/query/domain"
)

// FormatVersion is the interchange format version written on save and export.
const FormatVersion = "1.0"

// SavedQuery is a named snapshot of a query descriptor.
type SavedQuery struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
	Version     string      `json:"version"`
	Config      QueryConfig `json:"config"`
}

// QueryConfig is the descriptor and pagination snapshot stored with a saved query.
type QueryConfig struct {
	SelectedTable   string                 `json:"selectedTable"`
	SelectedColumns []string               `json:"selectedColumns"`
	Filters         []query.FilterSpec     `json:"filters,omitempty"`
	Sorting         []query.SortSpec       `json:"sorting,omitempty"`
	Aggregates      []query.AggregateSpec  `json:"aggregates,omitempty"`
	Pagination      *query.PaginationState `json:"pagination,omitempty"`
}

// NewQueryConfig snapshots a descriptor.
func NewQueryConfig(desc *query.Descriptor) QueryConfig {
	cfg := QueryConfig{
		SelectedTable:   desc.Table,
		SelectedColumns: append([]string{}, desc.Columns...),
		Filters:         append([]query.FilterSpec(nil), desc.Filters...),
		Sorting:         append([]query.SortSpec(nil), desc.Sorting...),
		Aggregates:      cloneAggregates(desc.Aggregates),
	}
	if desc.PageSize > 0 {
		p := query.NewPaginationState(desc.CurrentPage(), desc.PageSize, 0)
		cfg.Pagination = &p
	}
	return cfg
}

// ToDescriptor extracts a fresh query descriptor from the snapshot.
func (c QueryConfig) ToDescriptor() *query.Descriptor {
	desc := &query.Descriptor{
		Table:      c.SelectedTable,
		Columns:    append([]string(nil), c.SelectedColumns...),
		Filters:    append([]query.FilterSpec(nil), c.Filters...),
		Sorting:    append([]query.SortSpec(nil), c.Sorting...),
		Aggregates: cloneAggregates(c.Aggregates),
		Page:       1,
	}
	if c.Pagination != nil {
		desc.Page = c.Pagination.CurrentPage
		desc.PageSize = c.Pagination.PageSize
	}
	return desc
}

// Clone returns a deep copy safe to hand outside the repository lock.
func (q SavedQuery) Clone() SavedQuery {
	out := q
	if q.Config.SelectedColumns != nil {
		out.Config.SelectedColumns = append([]string{}, q.Config.SelectedColumns...)
	}
	out.Config.Filters = append([]query.FilterSpec(nil), q.Config.Filters...)
	out.Config.Sorting = append([]query.SortSpec(nil), q.Config.Sorting...)
	out.Config.Aggregates = cloneAggregates(q.Config.Aggregates)
	if q.Config.Pagination != nil {
		p := *q.Config.Pagination
		out.Config.Pagination = &p
	}
	return out
}

// Validate reports whether a candidate has a name, a table and a column list (possibly empty).
func Validate(q *SavedQuery) bool {
	if q == nil {
		return false
	}
	return strings.TrimSpace(q.Name) != "" &&
		strings.TrimSpace(q.Config.SelectedTable) != "" &&
		q.Config.SelectedColumns != nil
}

// NameKey is the case-insensitive identity used for name uniqueness.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ImportResult reports the outcome of an import.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

func cloneAggregates(in []query.AggregateSpec) []query.AggregateSpec {
	if in == nil {
		return nil
	}
	out := make([]query.AggregateSpec, len(in))
	for i, a := range in {
		out[i] = a
		out[i].Columns = append([]string{}, a.Columns...)
	}
	return out
}
