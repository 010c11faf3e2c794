package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	ServiceName string
}

// InitMetrics initializes the Prometheus metrics exporter. It returns the
// MeterProvider and an HTTP handler for the /metrics endpoint.
func InitMetrics(_ MetricsConfig) (*sdkmetric.MeterProvider, http.Handler, error) {
	exporter, err := promexporter.New()
	if err != nil {
		return nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)

	return provider, promhttp.Handler(), nil
}

// DecisionMetrics counts credit decisions by outcome and reason.
type DecisionMetrics struct {
	decisions *prometheus.CounterVec
}

// NewDecisionMetrics registers decision counters on the default registry.
func NewDecisionMetrics() *DecisionMetrics {
	return &DecisionMetrics{
		decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "credit_engine_decisions_total",
			Help: "Credit decisions grouped by outcome and reason.",
		}, []string{"outcome", "reason"}),
	}
}

// Observe records a single decision outcome.
func (m *DecisionMetrics) Observe(approved bool, reason string) {
	outcome := "rejected"
	if approved {
		outcome = "approved"
	}
	m.decisions.WithLabelValues(outcome, reason).Inc()
}
