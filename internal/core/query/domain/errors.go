package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for query compilation and execution.
var (
	// ErrMissingTable indicates a descriptor without a table.
	ErrMissingTable = errors.New("querydeck: no table selected")

	// ErrInvalidIdentifier indicates an identifier that cannot be quoted safely.
	ErrInvalidIdentifier = errors.New("querydeck: invalid identifier")
)

// CompilationError reports an identifier violation found while compiling.
type CompilationError struct {
	// Identifier is the offending table or column name.
	Identifier string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *CompilationError) Error() string {
	return fmt.Sprintf("querydeck: compilation failed for identifier %q: %v", e.Identifier, e.Cause)
}

// Unwrap returns the underlying error.
func (e *CompilationError) Unwrap() error {
	return e.Cause
}

// IsMissingTable checks if an error is a missing table error.
func IsMissingTable(err error) bool {
	return errors.Is(err, ErrMissingTable)
}

// IsInvalidIdentifier checks if an error is caused by an invalid identifier.
func IsInvalidIdentifier(err error) bool {
	return errors.Is(err, ErrInvalidIdentifier)
}
