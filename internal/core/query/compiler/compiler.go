// Package compiler implements SQL compilation from query descriptors.
package compiler

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/satishbabariya/querydeck/internal/core/query/aggregate"
	"github.com/satishbabariya/querydeck/internal/core/query/domain"
	"github.com/satishbabariya/querydeck/internal/debug"
)

// SQLCompiler implements the domain.QueryCompiler interface.
type SQLCompiler struct {
	dialect domain.SQLDialect
}

// NewSQLCompiler creates a new SQL compiler.
func NewSQLCompiler(dialect domain.SQLDialect) *SQLCompiler {
	return &SQLCompiler{
		dialect: dialect,
	}
}

// Dialect returns the dialect the compiler renders for.
func (c *SQLCompiler) Dialect() domain.SQLDialect {
	return c.dialect
}

// Compile produces the base, count and window statements for a descriptor.
// columns is the resolved column list; when empty every column is selected.
func (c *SQLCompiler) Compile(ctx context.Context, desc *domain.Descriptor, columns []string) (*domain.CompiledQuery, error) {
	if desc == nil || strings.TrimSpace(desc.Table) == "" {
		return nil, domain.ErrMissingTable
	}

	table, err := c.quote(desc.Table)
	if err != nil {
		return nil, err
	}

	// SELECT clause
	selectList := "*"
	if len(columns) > 0 {
		quoted := make([]string, len(columns))
		for i, col := range columns {
			if quoted[i], err = c.quote(col); err != nil {
				return nil, err
			}
		}
		selectList = strings.Join(quoted, ", ")
	}

	b := &binder{dialect: c.dialect}

	var from strings.Builder
	from.WriteString("SELECT ")
	from.WriteString(selectList)
	from.WriteString(" FROM ")
	from.WriteString(table)

	// WHERE clause
	where, err := c.compilePredicates(desc.Filters, b)
	if err != nil {
		return nil, err
	}
	if where != "" {
		from.WriteString(" WHERE ")
		from.WriteString(where)
	}
	unordered := from.String()

	// ORDER BY clause
	order, err := c.compileOrder(desc.Sorting)
	if err != nil {
		return nil, err
	}
	base := unordered
	if order != "" {
		base += " ORDER BY " + order
	}

	window := base
	if desc.Paginated() {
		window = c.windowSQL(base, desc.CurrentPage(), desc.PageSize)
	}

	compiled := &domain.CompiledQuery{
		Base:    domain.Statement{Query: base, Params: b.params},
		Count:   domain.Statement{Query: c.countSQL(unordered), Params: b.params},
		Window:  domain.Statement{Query: window, Params: b.params},
		Mapping: c.buildResultMapping(desc, columns),
		Dialect: c.dialect,
	}

	debug.Debug("compiled query",
		"table", desc.Table,
		"window", compiled.Window.Query,
		"params", len(b.params),
	)

	return compiled, nil
}

// countSQL wraps the unordered base statement to count every matching row.
func (c *SQLCompiler) countSQL(base string) string {
	return fmt.Sprintf("SELECT COUNT(*) AS total_count FROM (%s) count_src", base)
}

// windowSQL restricts the ordered base statement to ranked rows
// ((page-1)*pageSize)+1 .. page*pageSize.
func (c *SQLCompiler) windowSQL(base string, page, pageSize int) string {
	offset := (page - 1) * pageSize
	return fmt.Sprintf("%s LIMIT %d OFFSET %d", base, pageSize, offset)
}

func (c *SQLCompiler) quote(name string) (string, error) {
	quoted, err := QuoteIdentifier(c.dialect, name)
	if err != nil {
		return "", &domain.CompilationError{Identifier: name, Cause: err}
	}
	return quoted, nil
}

// buildResultMapping builds the result mapping for a descriptor.
func (c *SQLCompiler) buildResultMapping(desc *domain.Descriptor, columns []string) domain.ResultMapping {
	return domain.ResultMapping{
		Table:      desc.Table,
		Columns:    append([]string(nil), columns...),
		Aggregates: aggregate.Labels(desc.Aggregates),
	}
}

// Args returns the bind values of a statement in the form the dialect's driver expects.
func Args(dialect domain.SQLDialect, stmt domain.Statement) []interface{} {
	args := make([]interface{}, len(stmt.Params))
	for i, p := range stmt.Params {
		if dialect == domain.SQLite {
			args[i] = sql.Named(p.Name, p.Value)
			continue
		}
		args[i] = p.Value
	}
	return args
}

// Ensure SQLCompiler implements QueryCompiler interface.
var _ domain.QueryCompiler = (*SQLCompiler)(nil)
