package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	apiRequestsTotal      *prometheus.CounterVec
	apiLatencySeconds     *prometheus.HistogramVec
	apiErrorsTotal        *prometheus.CounterVec
	gradeMutationsTotal   *prometheus.CounterVec
	gradeMutationSeconds  *prometheus.HistogramVec
	resolutionsTotal      *prometheus.CounterVec
	sideEffectDegradation *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors for the grading API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adesua_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "adesua_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adesua_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		gradeMutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adesua_grade_mutations_total",
			Help: "Grade submissions and updates by outcome.",
		}, []string{"operation", "outcome"})

		gradeMutationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "adesua_grade_mutation_seconds",
			Help:    "Latency distribution for grade mutations.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"operation"})

		resolutionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adesua_assignment_resolutions_total",
			Help: "Class-assignment resolutions by outcome.",
		}, []string{"outcome"})

		sideEffectDegradation = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adesua_side_effect_degradations_total",
			Help: "Best-effort side effects that failed after a committed mutation.",
		}, []string{"effect"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			gradeMutationsTotal,
			gradeMutationSeconds,
			resolutionsTotal,
			sideEffectDegradation,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// GradeMutations exposes the counter for grade mutations.
func GradeMutations() *prometheus.CounterVec {
	RegisterMetrics()
	return gradeMutationsTotal
}

// GradeMutationLatency exposes the latency histogram for grade mutations.
func GradeMutationLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return gradeMutationSeconds
}

// Resolutions exposes the counter for class-assignment resolutions.
func Resolutions() *prometheus.CounterVec {
	RegisterMetrics()
	return resolutionsTotal
}

// SideEffectDegradations exposes the counter for degraded side effects.
func SideEffectDegradations() *prometheus.CounterVec {
	RegisterMetrics()
	return sideEffectDegradation
}
