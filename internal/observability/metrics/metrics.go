// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "meeting_summary"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Summarization request metrics
	SummariesTotal    prometheus.Counter
	SummariesFailed   *prometheus.CounterVec
	SummariesDegraded prometheus.Counter
	SummaryDuration   prometheus.Histogram

	// Window metrics
	WindowsTotal    prometheus.Counter
	WindowsEmpty    prometheus.Counter
	WindowsDegraded prometheus.Counter

	// Oracle call metrics
	OracleLatency *prometheus.HistogramVec
	OracleErrors  *prometheus.CounterVec

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		// Summarization request metrics
		SummariesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_total",
			Help:      "Total number of meeting summarization requests",
		}),
		SummariesFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_failed_total",
			Help:      "Total number of failed summarization requests",
		}, []string{"reason"}),
		SummariesDegraded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_degraded_total",
			Help:      "Total number of responses returned with degraded sections",
		}),
		SummaryDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "summary_duration_seconds",
			Help:      "End-to-end duration of summarization requests in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),

		// Window metrics
		WindowsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "windows_total",
			Help:      "Total number of timeline windows processed",
		}),
		WindowsEmpty: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "windows_empty_total",
			Help:      "Total number of windows with no transcript segments",
		}),
		WindowsDegraded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "windows_degraded_total",
			Help:      "Total number of windows whose summary was degraded",
		}),

		// Oracle call metrics
		OracleLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "oracle_latency_seconds",
			Help:      "Summarization provider call latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"provider", "mode"}),
		OracleErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_errors_total",
			Help:      "Total number of summarization provider errors",
		}, []string{"provider", "mode", "error_type"}),

		// Kafka publish metrics
		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),
	}
}

// RecordSummaryStart records a new summarization request.
func (m *Metrics) RecordSummaryStart() {
	m.SummariesTotal.Inc()
}

// RecordSummaryEnd records a summarization request finishing.
func (m *Metrics) RecordSummaryEnd(degraded bool, durationSeconds float64) {
	m.SummaryDuration.Observe(durationSeconds)
	if degraded {
		m.SummariesDegraded.Inc()
	}
}

// RecordSummaryFailed records a request rejected before completion.
func (m *Metrics) RecordSummaryFailed(reason string) {
	m.SummariesFailed.WithLabelValues(reason).Inc()
}

// RecordWindow records one processed window.
func (m *Metrics) RecordWindow(empty, degraded bool) {
	m.WindowsTotal.Inc()
	if empty {
		m.WindowsEmpty.Inc()
	}
	if degraded {
		m.WindowsDegraded.Inc()
	}
}

// RecordOracleCall records a provider call. errType is empty on success,
// otherwise one of "unavailable", "malformed", "canceled".
func (m *Metrics) RecordOracleCall(provider, mode, errType string, latencySeconds float64) {
	m.OracleLatency.WithLabelValues(provider, mode).Observe(latencySeconds)
	if errType != "" {
		m.OracleErrors.WithLabelValues(provider, mode, errType).Inc()
	}
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}
