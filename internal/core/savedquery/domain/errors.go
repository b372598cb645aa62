package domain

import "errors"

var (
	// ErrDuplicateName is returned when a name collides case-insensitively with an existing entry.
	ErrDuplicateName = errors.New("savedquery: a query with this name already exists")

	// ErrNotFound is returned when no entry has the requested id.
	ErrNotFound = errors.New("savedquery: query not found")

	// ErrNoValidEntries is returned when an import payload holds nothing valid to consider.
	ErrNoValidEntries = errors.New("savedquery: no valid queries to import")

	// ErrInvalidPayload is returned when an import document cannot be parsed.
	ErrInvalidPayload = errors.New("savedquery: unreadable import document")

	// ErrInvalidQuery is returned when a query to save lacks a name or table.
	ErrInvalidQuery = errors.New("savedquery: query needs a name and a table")
)
