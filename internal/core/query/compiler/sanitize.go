package compiler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/satishbabariya/querydeck/internal/core/query/domain"
)

// dateLayouts are tried in order when a literal is not numeric.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// QuoteIdentifier validates name and quotes it for the dialect.
// Names that are empty or contain a quote character or NUL are rejected.
func QuoteIdentifier(dialect domain.SQLDialect, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: empty name", domain.ErrInvalidIdentifier)
	}
	if strings.ContainsAny(name, "\"'`\x00") {
		return "", fmt.Errorf("%w: %q contains a quote character", domain.ErrInvalidIdentifier, name)
	}

	switch dialect {
	case domain.MySQL:
		return "`" + name + "`", nil
	default:
		return `"` + name + `"`, nil
	}
}

// CoerceLiteral converts a client-supplied value into a bind value.
// Strings are tried as numbers first, then as dates, then kept as text.
// A numeric-looking string is always numeric, whatever the column type.
func CoerceLiteral(raw interface{}) interface{} {
	s, ok := raw.(string)
	if !ok {
		return raw
	}

	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}

	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !isSpecialFloat(trimmed) {
		return f
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t
		}
	}

	return s
}

// isSpecialFloat rejects the words strconv accepts but users never mean as numbers.
func isSpecialFloat(s string) bool {
	switch strings.ToLower(strings.TrimLeft(s, "+-")) {
	case "inf", "infinity", "nan":
		return true
	}
	return false
}
