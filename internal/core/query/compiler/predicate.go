package compiler

import (
	"fmt"
	"strings"

	"github.com/satishbabariya/querydeck/internal/core/query/domain"
	"github.com/satishbabariya/querydeck/internal/debug"
)

// binder hands out bind parameters named val0, val1, ... and renders
// the placeholder the dialect expects.
type binder struct {
	dialect domain.SQLDialect
	params  []domain.Param
}

func (b *binder) bind(value interface{}) string {
	name := fmt.Sprintf("val%d", len(b.params))
	b.params = append(b.params, domain.Param{Name: name, Value: value})

	switch b.dialect {
	case domain.PostgreSQL:
		return fmt.Sprintf("$%d", len(b.params))
	case domain.SQLite:
		return ":" + name
	default:
		return "?"
	}
}

// compilePredicates compiles filters into a conjunctive WHERE fragment.
// Incomplete filters are dropped; a field that is not a valid identifier fails the whole query.
func (c *SQLCompiler) compilePredicates(filters []domain.FilterSpec, b *binder) (string, error) {
	var clauses []string
	for _, filter := range filters {
		clause, ok, err := c.compilePredicate(filter, b)
		if err != nil {
			return "", err
		}
		if !ok {
			debug.Debug("skipping filter", "field", filter.Field, "operator", filter.Operator)
			continue
		}
		clauses = append(clauses, clause)
	}
	return strings.Join(clauses, " AND "), nil
}

// compilePredicate compiles one filter, reporting false when it must be skipped.
func (c *SQLCompiler) compilePredicate(filter domain.FilterSpec, b *binder) (string, bool, error) {
	if strings.TrimSpace(filter.Field) == "" || filter.Operator == "" || !filter.Operator.Known() {
		return "", false, nil
	}
	if !filter.Operator.Unary() && missingValue(filter.Value) {
		return "", false, nil
	}

	field, err := c.quote(filter.Field)
	if err != nil {
		return "", false, err
	}

	switch filter.Operator {
	case domain.IsNull:
		return field + " IS NULL", true, nil
	case domain.IsNotNull:
		return field + " IS NOT NULL", true, nil
	case domain.Contains:
		return likeClause(field, b.bind(fmt.Sprintf("%%%v%%", filter.Value))), true, nil
	case domain.StartsWith:
		return likeClause(field, b.bind(fmt.Sprintf("%v%%", filter.Value))), true, nil
	case domain.EndsWith:
		return likeClause(field, b.bind(fmt.Sprintf("%%%v", filter.Value))), true, nil
	}

	op := comparisonSQL[filter.Operator]
	return fmt.Sprintf("%s %s %s", field, op, b.bind(CoerceLiteral(filter.Value))), true, nil
}

var comparisonSQL = map[domain.ComparisonOperator]string{
	domain.Equals:    "=",
	domain.NotEquals: "<>",
	domain.Gt:        ">",
	domain.Lt:        "<",
	domain.Gte:       ">=",
	domain.Lte:       "<=",
}

func likeClause(field, placeholder string) string {
	return fmt.Sprintf("UPPER(%s) LIKE UPPER(%s)", field, placeholder)
}

func missingValue(v interface{}) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok && s == "" {
		return true
	}
	return false
}
