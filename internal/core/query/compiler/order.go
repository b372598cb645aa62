package compiler

import (
	"strings"

	"github.com/satishbabariya/querydeck/internal/core/query/domain"
	"github.com/satishbabariya/querydeck/internal/debug"
)

// compileOrder compiles sort specs into an ORDER BY term list, in input order.
// Specs without a field are dropped; an invalid field fails the whole query.
// Fields are not checked against the table; the database reports unknown ones.
func (c *SQLCompiler) compileOrder(sorting []domain.SortSpec) (string, error) {
	var terms []string
	for _, sort := range sorting {
		if strings.TrimSpace(sort.Field) == "" {
			debug.Debug("skipping sort without field", "direction", sort.Direction)
			continue
		}
		field, err := c.quote(sort.Field)
		if err != nil {
			return "", err
		}
		terms = append(terms, field+" "+string(sort.Direction.Normalize()))
	}
	return strings.Join(terms, ", "), nil
}
