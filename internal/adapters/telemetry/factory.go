package telemetry

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind names a telemetry backend.
type Kind string

const (
	// KindNoop discards everything.
	KindNoop Kind = "noop"

	// KindPrometheus exposes counters and histograms on /metrics.
	KindPrometheus Kind = "prometheus"
)

var namespacePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// New returns the backend named by cfg.Type.
// A Prometheus namespace must itself be a valid metric name.
func New(cfg Config) (Telemetry, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(cfg.Type))) {
	case KindNoop, "":
		return NewNoopTelemetry(), nil
	case KindPrometheus:
		if cfg.Namespace != "" && !namespacePattern.MatchString(cfg.Namespace) {
			return nil, fmt.Errorf("invalid telemetry namespace %q", cfg.Namespace)
		}
		return NewPrometheusTelemetry(&cfg), nil
	default:
		return nil, fmt.Errorf("unknown telemetry type %q (want %s or %s)", cfg.Type, KindNoop, KindPrometheus)
	}
}
