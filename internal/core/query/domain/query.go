// Package domain contains the core business entities and interfaces for the Query domain.
package domain

import (
	"context"
	"encoding/json"
	"strings"
)

// Descriptor is one user-assembled query request.
// It is built fresh for every execution and never mutated after compilation.
type Descriptor struct {
	Table      string          `json:"table"`
	Columns    []string        `json:"columns"`
	Filters    []FilterSpec    `json:"filters"`
	Sorting    []SortSpec      `json:"sorting"`
	Aggregates []AggregateSpec `json:"aggregates"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
}

// CurrentPage returns the requested page, normalised to 1 for non-positive values.
func (d *Descriptor) CurrentPage() int {
	if d.Page < 1 {
		return 1
	}
	return d.Page
}

// Paginated reports whether the descriptor requests windowed results.
func (d *Descriptor) Paginated() bool {
	return d.PageSize > 0
}

// FilterSpec describes a single filter condition.
type FilterSpec struct {
	Field    string             `json:"field"`
	Operator ComparisonOperator `json:"operator"`
	Value    interface{}        `json:"value,omitempty"`
}

// ComparisonOperator represents comparison operators.
type ComparisonOperator string

const (
	// Equals checks equality.
	Equals ComparisonOperator = "eq"
	// NotEquals checks inequality.
	NotEquals ComparisonOperator = "neq"
	// Gt checks if value is greater than.
	Gt ComparisonOperator = "gt"
	// Lt checks if value is less than.
	Lt ComparisonOperator = "lt"
	// Gte checks if value is greater than or equal.
	Gte ComparisonOperator = "gte"
	// Lte checks if value is less than or equal.
	Lte ComparisonOperator = "lte"
	// Contains checks if string contains substring (case-insensitive).
	Contains ComparisonOperator = "contains"
	// StartsWith checks if string starts with (case-insensitive).
	StartsWith ComparisonOperator = "startsWith"
	// EndsWith checks if string ends with (case-insensitive).
	EndsWith ComparisonOperator = "endsWith"
	// IsNull checks if field is null.
	IsNull ComparisonOperator = "isNull"
	// IsNotNull checks if field is not null.
	IsNotNull ComparisonOperator = "isNotNull"
)

// Unary reports whether the operator takes no value.
func (o ComparisonOperator) Unary() bool {
	return o == IsNull || o == IsNotNull
}

// Known reports whether the operator is one the compiler understands.
func (o ComparisonOperator) Known() bool {
	switch o {
	case Equals, NotEquals, Gt, Lt, Gte, Lte, Contains, StartsWith, EndsWith, IsNull, IsNotNull:
		return true
	}
	return false
}

// SortSpec defines sorting.
type SortSpec struct {
	Field     string        `json:"field"`
	Direction SortDirection `json:"direction"`
}

// SortDirection represents sort direction.
type SortDirection string

const (
	// Asc sorts ascending.
	Asc SortDirection = "ASC"
	// Desc sorts descending.
	Desc SortDirection = "DESC"
)

// Normalize maps any direction other than DESC (case-insensitive) to ASC.
func (d SortDirection) Normalize() SortDirection {
	if strings.EqualFold(string(d), string(Desc)) {
		return Desc
	}
	return Asc
}

// AggregateSpec defines a per-row aggregate.
type AggregateSpec struct {
	Type    AggregateFunc `json:"type"`
	Columns []string      `json:"columns"`
	Alias   string        `json:"alias,omitempty"`
}

// AggregateFunc represents aggregation functions.
type AggregateFunc string

const (
	// Sum sums field values.
	Sum AggregateFunc = "SUM"
	// Avg calculates average.
	Avg AggregateFunc = "AVG"
	// Count counts non-null values.
	Count AggregateFunc = "COUNT"
)

// Param is a named bind parameter.
type Param struct {
	Name  string
	Value interface{}
}

// Statement is one SQL string plus its bind parameters.
type Statement struct {
	Query  string
	Params []Param
}

// CompiledQuery holds the three statements derived from one descriptor.
type CompiledQuery struct {
	Base    Statement
	Count   Statement
	Window  Statement
	Mapping ResultMapping
	Dialect SQLDialect
}

// ResultMapping lists the output columns of a compiled query.
type ResultMapping struct {
	Table      string
	Columns    []string
	Aggregates []string
}

// OutputColumns returns data columns followed by aggregate labels.
func (m ResultMapping) OutputColumns() []string {
	out := make([]string, 0, len(m.Columns)+len(m.Aggregates))
	out = append(out, m.Columns...)
	return append(out, m.Aggregates...)
}

// SQLDialect represents a SQL dialect.
type SQLDialect string

const (
	// PostgreSQL dialect.
	PostgreSQL SQLDialect = "postgres"
	// MySQL dialect.
	MySQL SQLDialect = "mysql"
	// SQLite dialect.
	SQLite SQLDialect = "sqlite"
)

// Row is one result row keyed by column name.
type Row map[string]interface{}

// Column describes a table column as reported by schema introspection.
type Column struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

// Result is the outcome of a successful execution.
type Result struct {
	Columns    []string
	Rows       []Row
	Pagination PaginationState
}

// Envelope is the response shape handed to callers.
type Envelope struct {
	Success    bool             `json:"success"`
	Data       []Row            `json:"data,omitempty"`
	Columns    []string         `json:"columns,omitempty"`
	Pagination *PaginationState `json:"pagination,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// MarshalJSON omits data and pagination on failure but always emits data on success.
func (e Envelope) MarshalJSON() ([]byte, error) {
	if !e.Success {
		return json.Marshal(struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		}{false, e.Error})
	}
	data := e.Data
	if data == nil {
		data = []Row{}
	}
	return json.Marshal(struct {
		Success    bool             `json:"success"`
		Data       []Row            `json:"data"`
		Columns    []string         `json:"columns,omitempty"`
		Pagination *PaginationState `json:"pagination,omitempty"`
	}{true, data, e.Columns, e.Pagination})
}

// NewSuccessEnvelope wraps a result.
func NewSuccessEnvelope(result *Result) Envelope {
	p := result.Pagination
	return Envelope{
		Success:    true,
		Data:       result.Rows,
		Columns:    result.Columns,
		Pagination: &p,
	}
}

// NewErrorEnvelope wraps a failure.
func NewErrorEnvelope(err error) Envelope {
	return Envelope{Success: false, Error: err.Error()}
}

// QueryCompiler defines the interface for query compilation.
type QueryCompiler interface {
	// Compile compiles a descriptor against a resolved column list.
	Compile(ctx context.Context, desc *Descriptor, columns []string) (*CompiledQuery, error)
}
