package compiler

import (
	"testing"
	"time"

	"github.com/satishbabariya/querydeck/internal/core/query/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		dialect domain.SQLDialect
		input   string
		want    string
		wantErr bool
	}{
		{"postgres", domain.PostgreSQL, "EMP", `"EMP"`, false},
		{"sqlite", domain.SQLite, "emp", `"emp"`, false},
		{"mysql", domain.MySQL, "emp", "`emp`", false},
		{"spaces are allowed", domain.PostgreSQL, "order date", `"order date"`, false},
		{"empty", domain.PostgreSQL, "", "", true},
		{"blank", domain.PostgreSQL, "   ", "", true},
		{"double quote", domain.PostgreSQL, `a"b`, "", true},
		{"single quote", domain.PostgreSQL, "a'b", "", true},
		{"backtick", domain.MySQL, "a`b", "", true},
		{"nul byte", domain.PostgreSQL, "a\x00b", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := QuoteIdentifier(tt.dialect, tt.input)
			if tt.wantErr {
				assert.True(t, domain.IsInvalidIdentifier(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoerceLiteral(t *testing.T) {
	t.Run("integers", func(t *testing.T) {
		assert.Equal(t, int64(1000), CoerceLiteral("1000"))
		assert.Equal(t, int64(-5), CoerceLiteral(" -5 "))
		assert.Equal(t, int64(7), CoerceLiteral("007"))
	})

	t.Run("decimals", func(t *testing.T) {
		assert.Equal(t, 12.5, CoerceLiteral("12.5"))
	})

	t.Run("dates", func(t *testing.T) {
		assert.Equal(t, time.Date(1981, 11, 17, 0, 0, 0, 0, time.UTC), CoerceLiteral("1981-11-17"))
		assert.Equal(t, time.Date(1981, 11, 17, 9, 30, 0, 0, time.UTC), CoerceLiteral("1981-11-17 09:30:00"))
		ts, ok := CoerceLiteral("1981-11-17T09:30:00Z").(time.Time)
		assert.True(t, ok)
		assert.Equal(t, 1981, ts.Year())
	})

	t.Run("text", func(t *testing.T) {
		assert.Equal(t, "KING", CoerceLiteral("KING"))
		assert.Equal(t, "", CoerceLiteral(""))
		assert.Equal(t, "NaN", CoerceLiteral("NaN"))
		assert.Equal(t, "inf", CoerceLiteral("inf"))
	})

	t.Run("numeric-looking text is always numeric", func(t *testing.T) {
		// A text column holding "0042" is still compared as a number.
		assert.Equal(t, int64(42), CoerceLiteral("0042"))
	})

	t.Run("non-strings pass through", func(t *testing.T) {
		assert.Equal(t, 3.5, CoerceLiteral(3.5))
		assert.Equal(t, true, CoerceLiteral(true))
		assert.Nil(t, CoerceLiteral(nil))
	})
}
