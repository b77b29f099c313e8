// Package metrics provides Prometheus metrics for the search service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics of the service.
type Metrics struct {
	// Search metrics
	SearchesTotal  *prometheus.CounterVec
	SearchDuration *prometheus.HistogramVec

	// Store call metrics
	StoreCallsTotal   *prometheus.CounterVec
	StoreCallDuration *prometheus.HistogramVec

	// Resolver metrics
	UnsatisfiableTotal *prometheus.CounterVec
	LabelLookupsTotal  *prometheus.CounterVec
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{}

	m.SearchesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phis_searches_total",
			Help: "Total number of searches by family and outcome",
		},
		[]string{"family", "outcome"},
	)

	m.SearchDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "phis_search_duration_seconds",
			Help:    "Duration of searches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"family"},
	)

	m.StoreCallsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phis_store_calls_total",
			Help: "Total number of backing store calls",
		},
		[]string{"store", "operation", "status"},
	)

	m.StoreCallDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "phis_store_call_duration_seconds",
			Help:    "Duration of backing store calls in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"store", "operation"},
	)

	m.UnsatisfiableTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phis_unsatisfiable_filters_total",
			Help: "Searches answered without touching the primary store because a filter matched nothing",
		},
		[]string{"reason"},
	)

	m.LabelLookupsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phis_label_lookups_total",
			Help: "Label lookups by kind and whether the request-scoped index already held them",
		},
		[]string{"kind", "result"},
	)

	return m
}

// RecordSearch records one finished search.
func (m *Metrics) RecordSearch(family, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.SearchesTotal.WithLabelValues(family, outcome).Inc()
	m.SearchDuration.WithLabelValues(family).Observe(duration.Seconds())
}

// RecordStoreCall records one backing store call.
func (m *Metrics) RecordStoreCall(store, operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.StoreCallsTotal.WithLabelValues(store, operation, status).Inc()
	m.StoreCallDuration.WithLabelValues(store, operation).Observe(duration.Seconds())
}

// RecordUnsatisfiable records a search short-circuited to no results.
func (m *Metrics) RecordUnsatisfiable(reason string) {
	if m == nil {
		return
	}
	m.UnsatisfiableTotal.WithLabelValues(reason).Inc()
}

// RecordLabelLookup records a label index access.
func (m *Metrics) RecordLabelLookup(kind string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.LabelLookupsTotal.WithLabelValues(kind, result).Inc()
}
