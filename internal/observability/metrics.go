package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce              sync.Once
	requestsTotal             *prometheus.CounterVec
	latencySeconds            *prometheus.HistogramVec
	errorsTotal               *prometheus.CounterVec
	placementTransitionsTotal *prometheus.CounterVec
	journalReviewsTotal       *prometheus.CounterVec
	auditEventsTotal          *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simagang_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "simagang_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simagang_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		placementTransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simagang_placement_transitions_total",
			Help: "Total number of placement status transitions by target status.",
		}, []string{"status"})

		journalReviewsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simagang_journal_reviews_total",
			Help: "Total number of journal review decisions.",
		}, []string{"decision"})

		auditEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simagang_audit_events_total",
			Help: "Total number of audit trail entries recorded.",
		}, []string{"action"})

		prometheus.MustRegister(
			requestsTotal,
			latencySeconds,
			errorsTotal,
			placementTransitionsTotal,
			journalReviewsTotal,
			auditEventsTotal,
		)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// Errors exposes the counter for API error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return errorsTotal
}

// PlacementTransitions exposes the counter for placement status transitions.
func PlacementTransitions() *prometheus.CounterVec {
	RegisterMetrics()
	return placementTransitionsTotal
}

// JournalReviews exposes the counter for journal review decisions.
func JournalReviews() *prometheus.CounterVec {
	RegisterMetrics()
	return journalReviewsTotal
}

// AuditEvents exposes the counter for recorded audit entries.
func AuditEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return auditEventsTotal
}
