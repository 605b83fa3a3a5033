// Package metrics holds Prometheus metrics for the payment decision flow.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics aggregates the payment decision counters and latency histogram.
type Metrics struct {
	RequestsTotal     prometheus.Counter
	DecisionsTotal    *prometheus.CounterVec
	RateLimitedTotal  prometheus.Counter
	IdempotentReplays prometheus.Counter
	DecideDuration    prometheus.Histogram
}

// New creates and registers all payment metrics. Call once per process.
func New() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payguard_decide_requests_total",
			Help: "Total number of payment decision requests received",
		}),
		DecisionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "payguard_decisions_total",
			Help: "Payment decisions by outcome",
		}, []string{"decision"}),
		RateLimitedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payguard_rate_limited_total",
			Help: "Requests rejected by the per-customer rate limiter",
		}),
		IdempotentReplays: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payguard_idempotent_replays_total",
			Help: "Requests answered from the idempotency cache",
		}),
		DecideDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "payguard_decide_duration_seconds",
			Help:    "Latency of payment decisions",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// ObserveDecision records one completed decision.
func (m *Metrics) ObserveDecision(decision string, elapsed time.Duration) {
	m.RequestsTotal.Inc()
	m.DecisionsTotal.WithLabelValues(decision).Inc()
	m.DecideDuration.Observe(elapsed.Seconds())
}

// IncRateLimited records one rate-limited rejection.
func (m *Metrics) IncRateLimited() {
	m.RequestsTotal.Inc()
	m.RateLimitedTotal.Inc()
}

// IncIdempotentReplay records one cache-hit replay.
func (m *Metrics) IncIdempotentReplay() {
	m.RequestsTotal.Inc()
	m.IdempotentReplays.Inc()
}
