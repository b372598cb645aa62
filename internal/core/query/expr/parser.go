// Package expr parses the compact filter, sort and aggregate expressions
// accepted on the command line into query descriptor parts.
package expr

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/satishbabariya/querydeck/internal/core/query/domain"
)

var (
	whereParser = build[Where]()
	orderParser = build[OrderBy]()
	aggParser   = build[Aggregates]()
)

func build[G any]() *participle.Parser[G] {
	return participle.MustBuild[G](
		participle.Lexer(ExprLexer),
		participle.Elide("Whitespace"),
		participle.Unquote("String"),
		participle.CaseInsensitive("Ident"),
		participle.UseLookahead(2),
	)
}

var operators = map[string]domain.ComparisonOperator{
	"=":          domain.Equals,
	"!=":         domain.NotEquals,
	"<>":         domain.NotEquals,
	">":          domain.Gt,
	"<":          domain.Lt,
	">=":         domain.Gte,
	"<=":         domain.Lte,
	"contains":   domain.Contains,
	"startswith": domain.StartsWith,
	"endswith":   domain.EndsWith,
}

// ParseWhere parses a filter expression. An empty expression yields no filters.
func ParseWhere(input string) ([]domain.FilterSpec, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}

	where, err := whereParser.ParseString("where", input)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}

	filters := make([]domain.FilterSpec, 0, len(where.Conditions))
	for _, c := range where.Conditions {
		if c.Null != nil {
			op := domain.IsNull
			if c.Null.Not {
				op = domain.IsNotNull
			}
			filters = append(filters, domain.FilterSpec{Field: c.Field, Operator: op})
			continue
		}

		op, ok := operators[strings.ToLower(c.Compare.Operator)]
		if !ok {
			return nil, fmt.Errorf("%s: unknown operator %q", c.Pos, c.Compare.Operator)
		}
		filters = append(filters, domain.FilterSpec{
			Field:    c.Field,
			Operator: op,
			Value:    c.Compare.Value.text(),
		})
	}
	return filters, nil
}

func (v *Value) text() string {
	switch {
	case v.String != nil:
		return *v.String
	case v.Number != nil:
		return *v.Number
	case v.Word != nil:
		return *v.Word
	default:
		return ""
	}
}

// ParseOrderBy parses a sort list. Terms without a direction sort ascending.
func ParseOrderBy(input string) ([]domain.SortSpec, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}

	order, err := orderParser.ParseString("sort", input)
	if err != nil {
		return nil, fmt.Errorf("invalid sort expression: %w", err)
	}

	sorting := make([]domain.SortSpec, len(order.Terms))
	for i, term := range order.Terms {
		sorting[i] = domain.SortSpec{
			Field:     term.Field,
			Direction: domain.SortDirection(term.Direction).Normalize(),
		}
	}
	return sorting, nil
}

// ParseAggregates parses an aggregate list.
func ParseAggregates(input string) ([]domain.AggregateSpec, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}

	aggs, err := aggParser.ParseString("aggregate", input)
	if err != nil {
		return nil, fmt.Errorf("invalid aggregate expression: %w", err)
	}

	specs := make([]domain.AggregateSpec, len(aggs.Items))
	for i, call := range aggs.Items {
		columns := call.Columns
		if columns == nil {
			columns = []string{}
		}
		specs[i] = domain.AggregateSpec{
			Type:    domain.AggregateFunc(strings.ToUpper(call.Func)),
			Columns: columns,
			Alias:   call.Alias,
		}
	}
	return specs, nil
}
