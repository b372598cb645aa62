package database

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Translate(nil, nil))
	})

	t.Run("unrecognised errors pass through verbatim", func(t *testing.T) {
		err := errors.New(`column "FOO" does not exist`)
		assert.Same(t, err, Translate(err, nil))
	})

	t.Run("dial failures are unreachable hosts", func(t *testing.T) {
		err := fmt.Errorf("failed to ping database: %w", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED})
		translated := Translate(err, nil)
		assert.True(t, IsHostUnreachable(translated))
		assert.ErrorIs(t, translated, syscall.ECONNREFUSED)
	})

	t.Run("dns failures are unreachable hosts", func(t *testing.T) {
		err := &net.DNSError{Err: "no such host", Name: "db.invalid"}
		assert.True(t, IsHostUnreachable(Translate(err, nil)))
	})

	t.Run("classifier wins", func(t *testing.T) {
		classify := func(err error) (Category, bool) {
			return CategoryBadCredentials, true
		}
		translated := Translate(errors.New("auth"), classify)
		assert.True(t, IsBadCredentials(translated))
		assert.False(t, IsUnknownService(translated))
		assert.Contains(t, translated.Error(), "invalid username or password")
	})

	t.Run("context errors are not translated", func(t *testing.T) {
		assert.Same(t, context.Canceled, Translate(context.Canceled, nil))
	})

	t.Run("already translated errors are kept", func(t *testing.T) {
		err := &Error{Category: CategoryUnknownService, Cause: errors.New("x")}
		assert.Same(t, err, Translate(err, nil))
	})
}
