// Package telemetry provides telemetry adapter interfaces.
package telemetry

import (
	"context"
	"time"
)

// Telemetry defines the telemetry adapter interface.
type Telemetry interface {
	// RecordQuery records a query execution.
	RecordQuery(ctx context.Context, info QueryInfo)

	// RecordError records an error.
	RecordError(ctx context.Context, info ErrorInfo)

	// RecordSavedQueryOp records a saved-query repository operation.
	RecordSavedQueryOp(ctx context.Context, op string, success bool)

	// Close closes the telemetry adapter.
	Close(ctx context.Context) error
}

// QueryInfo contains information about one execution.
type QueryInfo struct {
	// Table is the table being queried. It is logged, never used as a metric label.
	Table string

	// Dialect is the database dialect.
	Dialect string

	// Duration is how long the execution took.
	Duration time.Duration

	// Success indicates if the execution succeeded.
	Success bool

	// Rows is the number of rows returned in the window.
	Rows int
}

// ErrorInfo contains information about an error.
type ErrorInfo struct {
	Error    error
	Table    string
	Category string
}

// Config holds telemetry configuration.
type Config struct {
	// Type is the telemetry type (noop, prometheus).
	Type string

	// Namespace prefixes every metric name.
	Namespace string
}
