package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/satishbabariya/querydeck/internal/adapters/database"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{"28P01", database.ErrBadCredentials},
		{"28000", database.ErrBadCredentials},
		{"3D000", database.ErrUnknownService},
		{"08006", database.ErrHostUnreachable},
	}

	adapter, err := NewPostgresAdapter(database.Config{})
	assert.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			driverErr := fmt.Errorf("query failed: %w", &pq.Error{Code: pq.ErrorCode(tt.code)})
			assert.ErrorIs(t, adapter.TranslateError(driverErr), tt.want)
		})
	}

	t.Run("other codes pass through", func(t *testing.T) {
		driverErr := &pq.Error{Code: "42703", Message: `column "FOO" does not exist`}
		translated := adapter.TranslateError(driverErr)
		assert.Same(t, driverErr, translated)
	})

	t.Run("non-driver errors", func(t *testing.T) {
		_, ok := Classify(errors.New("boom"))
		assert.False(t, ok)
	})

	t.Run("dialect", func(t *testing.T) {
		assert.Equal(t, database.PostgreSQL, adapter.GetDialect())
	})
}
