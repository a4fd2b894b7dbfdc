// Package middleware provides cross-cutting concerns for the review
// signal engine: metrics collection and snapshot-source decorators.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/trailtap/stamprank/internal/ports"
)

// Compile-time verification that PrometheusMetrics implements
// MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It provides real-time monitoring of ranking throughput,
// exclusion rates, and snapshot fetch behavior.
type PrometheusMetrics struct {
	operationLatency *prometheus.HistogramVec
	operationCounter *prometheus.CounterVec
	systemGauges     *prometheus.GaugeVec
	valueHistograms  *prometheus.HistogramVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance registered
// in the global Prometheus registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	return NewPrometheusMetricsWith(prometheus.DefaultRegisterer)
}

// NewPrometheusMetricsWith creates a PrometheusMetrics instance
// registered in the given registerer. Tests pass a fresh registry to
// avoid duplicate registration across instances.
func NewPrometheusMetricsWith(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		operationLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stamprank_operation_duration_seconds",
				Help:    "Execution time of engine operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "component"},
		),
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stamprank_operations_total",
				Help: "Total number of engine operations performed.",
			},
			[]string{"operation", "status", "component"},
		),
		systemGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stamprank_system_state",
				Help: "Current system state values for the engine.",
			},
			[]string{"metric", "component"},
		),
		valueHistograms: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stamprank_observed_values",
				Help:    "Distributions of engine values such as candidate counts and match scores.",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"metric", "component"},
		),
	}
}

func component(labels map[string]string) string {
	if c, ok := labels["component"]; ok {
		return c
	}
	return "unknown"
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	pm.operationLatency.WithLabelValues(operation, component(labels)).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by
// incrementing Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	status, ok := labels["status"]
	if !ok {
		status = "success"
	}
	pm.operationCounter.WithLabelValues(metric, status, component(labels)).Add(value)
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	pm.systemGauges.WithLabelValues(metric, component(labels)).Set(value)
}

// RecordHistogram implements the MetricsCollector interface by
// recording values in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	pm.valueHistograms.WithLabelValues(metric, component(labels)).Observe(value)
}
