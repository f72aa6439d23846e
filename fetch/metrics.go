package fetch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the fetch client.
type Metrics struct {
	Registry        *prometheus.Registry
	AttemptsTotal   *prometheus.CounterVec
	RequestDuration prometheus.Histogram
	BackoffsTotal   prometheus.Counter
	ExhaustedTotal  prometheus.Counter
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	attempts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetch_attempts_total",
			Help: "Total request attempts issued by the fetch client, by outcome.",
		},
		[]string{"outcome"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fetch_request_duration_seconds",
			Help:    "HTTP request latency per attempt.",
			Buckets: prometheus.DefBuckets,
		},
	)
	backoffs := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fetch_backoffs_total",
			Help: "Total backoff sleeps taken after failed attempts.",
		},
	)
	exhausted := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fetch_exhausted_total",
			Help: "Total fetches that failed every attempt.",
		},
	)

	registry.MustRegister(attempts, requestDuration, backoffs, exhausted)

	return &Metrics{
		Registry:        registry,
		AttemptsTotal:   attempts,
		RequestDuration: requestDuration,
		BackoffsTotal:   backoffs,
		ExhaustedTotal:  exhausted,
	}
}

// IncAttempt increments the attempts counter for an outcome label.
func (m *Metrics) IncAttempt(outcome string) {
	if m == nil {
		return
	}
	m.AttemptsTotal.WithLabelValues(outcome).Inc()
}

// ObserveDuration records an attempt duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// IncBackoff increments the backoff counter.
func (m *Metrics) IncBackoff() {
	if m == nil {
		return
	}
	m.BackoffsTotal.Inc()
}

// IncExhausted increments the exhausted counter.
func (m *Metrics) IncExhausted() {
	if m == nil {
		return
	}
	m.ExhaustedTotal.Inc()
}
