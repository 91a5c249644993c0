package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcomes
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

var (
	// Fetches counts upstream requests by component and outcome
	Fetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookdash_upstream_fetches_total",
		Help: "Requests issued to the bibliographic service",
	}, []string{"component", "outcome"})

	// Passes counts settled aggregation passes by status
	Passes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookdash_aggregation_passes_total",
		Help: "Aggregation passes by final status",
	}, []string{"status"})

	PassDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bookdash_aggregation_pass_seconds",
		Help:    "Wall time of aggregation passes",
		Buckets: prometheus.DefBuckets,
	})

	PublishedRows = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bookdash_published_rows",
		Help: "Rows in the currently published page",
	})

	SortRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookdash_sort_requests_total",
		Help: "Sort requests by key",
	}, []string{"key"})
)

// ObserveFetch records the outcome of one upstream request
func ObserveFetch(component string, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	Fetches.WithLabelValues(component, outcome).Inc()
}
