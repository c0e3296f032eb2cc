// Package metrics exposes Prometheus collectors for HTTP traffic and
// project/attribute mutations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Mutation results
const (
	ResultCommitted  = "committed"
	ResultRolledBack = "rolled_back"
	ResultRejected   = "rejected"
)

var (
	// HTTPRequestsTotal counts handled requests.
	// Labels: method, route, status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "projectdesk",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration tracks request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "projectdesk",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// MutationsTotal counts create/update/delete attempts per entity.
	// Labels: entity (project, assignment, attribute, timesheet, user), op, result
	MutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "projectdesk",
			Name:      "mutations_total",
			Help:      "Total number of entity mutations by outcome",
		},
		[]string{"entity", "op", "result"},
	)
)

// ObserveMutation records the outcome of one mutation.
func ObserveMutation(entity, op, result string) {
	MutationsTotal.WithLabelValues(entity, op, result).Inc()
}
