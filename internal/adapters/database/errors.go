package database

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// Category is a user-facing class of infrastructure failure.
type Category string

const (
	// CategoryBadCredentials means the server rejected the login.
	CategoryBadCredentials Category = "bad_credentials"
	// CategoryHostUnreachable means the server could not be reached.
	CategoryHostUnreachable Category = "host_unreachable"
	// CategoryUnknownService means the database or service name does not exist.
	CategoryUnknownService Category = "unknown_service"
)

// Sentinel errors for translated categories.
var (
	// ErrBadCredentials indicates rejected credentials.
	ErrBadCredentials = errors.New("invalid username or password")

	// ErrHostUnreachable indicates the database host could not be reached.
	ErrHostUnreachable = errors.New("database host is unreachable")

	// ErrUnknownService indicates an unknown database or service name.
	ErrUnknownService = errors.New("unknown database service")
)

var categoryErrors = map[Category]error{
	CategoryBadCredentials:  ErrBadCredentials,
	CategoryHostUnreachable: ErrHostUnreachable,
	CategoryUnknownService:  ErrUnknownService,
}

// Error is a translated database failure.
type Error struct {
	// Category is the recognised failure class.
	Category Category

	// Cause is the driver error.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", categoryErrors[e.Category], e.Cause)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches the category sentinel.
func (e *Error) Is(target error) bool {
	return categoryErrors[e.Category] == target
}

// Translate wraps err in *Error when classify or the generic network checks
// recognise it; otherwise err is returned verbatim.
func Translate(err error, classify Classifier) error {
	if err == nil {
		return nil
	}
	var translated *Error
	if errors.As(err, &translated) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	if classify != nil {
		if category, ok := classify(err); ok {
			return &Error{Category: category, Cause: err}
		}
	}
	if isNetworkError(err) {
		return &Error{Category: CategoryHostUnreachable, Cause: err}
	}
	return err
}

func isNetworkError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH)
}

// IsBadCredentials checks if an error is a rejected login.
func IsBadCredentials(err error) bool {
	return errors.Is(err, ErrBadCredentials)
}

// IsHostUnreachable checks if an error is an unreachable host.
func IsHostUnreachable(err error) bool {
	return errors.Is(err, ErrHostUnreachable)
}

// IsUnknownService checks if an error is an unknown database or service.
func IsUnknownService(err error) bool {
	return errors.Is(err, ErrUnknownService)
}
