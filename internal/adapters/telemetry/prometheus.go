package telemetry

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusTelemetry implements Telemetry using Prometheus metrics.
// Each instance owns its registry so tests can create several.
type PrometheusTelemetry struct {
	registry *prometheus.Registry

	queryDuration *prometheus.HistogramVec
	queryTotal    *prometheus.CounterVec
	rowsReturned  *prometheus.CounterVec
	errorTotal    *prometheus.CounterVec
	savedOps      *prometheus.CounterVec
}

// NewPrometheusTelemetry creates a new Prometheus telemetry adapter.
func NewPrometheusTelemetry(config *Config) *PrometheusTelemetry {
	ns := "querydeck"
	if config != nil && config.Namespace != "" {
		ns = config.Namespace
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &PrometheusTelemetry{
		registry: reg,
		queryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "query_duration_seconds",
			Help:      "Duration of query executions",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		}, []string{"dialect", "status"}),
		queryTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "queries_total",
			Help:      "Total number of query executions",
		}, []string{"dialect", "status"}),
		rowsReturned: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "rows_returned_total",
			Help:      "Total number of rows returned to callers",
		}, []string{"dialect"}),
		errorTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "errors_total",
			Help:      "Total number of failed executions by category",
		}, []string{"category"}),
		savedOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "saved_query_ops_total",
			Help:      "Total number of saved-query repository operations",
		}, []string{"op", "status"}),
	}
}

// RecordQuery records a query execution.
func (p *PrometheusTelemetry) RecordQuery(ctx context.Context, info QueryInfo) {
	status := statusLabel(info.Success)
	p.queryDuration.WithLabelValues(info.Dialect, status).Observe(info.Duration.Seconds())
	p.queryTotal.WithLabelValues(info.Dialect, status).Inc()
	if info.Success {
		p.rowsReturned.WithLabelValues(info.Dialect).Add(float64(info.Rows))
	}
}

// RecordError records an error.
func (p *PrometheusTelemetry) RecordError(ctx context.Context, info ErrorInfo) {
	category := info.Category
	if category == "" {
		category = "other"
	}
	p.errorTotal.WithLabelValues(category).Inc()
}

// RecordSavedQueryOp records a saved-query repository operation.
func (p *PrometheusTelemetry) RecordSavedQueryOp(ctx context.Context, op string, success bool) {
	p.savedOps.WithLabelValues(op, statusLabel(success)).Inc()
}

// Close closes the telemetry adapter.
func (p *PrometheusTelemetry) Close(ctx context.Context) error {
	return nil
}

// Registry exposes the underlying registry.
func (p *PrometheusTelemetry) Registry() *prometheus.Registry {
	return p.registry
}

// Handler returns the HTTP handler serving this adapter's metrics.
func (p *PrometheusTelemetry) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// Ensure PrometheusTelemetry implements Telemetry interface.
var _ Telemetry = (*PrometheusTelemetry)(nil)
