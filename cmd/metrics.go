package cmd

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queriesServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sightline_queries_total",
		Help: "Queries served, partitioned by query kind.",
	}, []string{"kind"})

	queryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sightline_query_duration_seconds",
		Help:    "Wall time spent answering a query.",
		Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
	})
)

// observeQuery records one served query of the given kind.
func observeQuery(kind string, start time.Time) {
	queriesServed.WithLabelValues(kind).Inc()
	queryDuration.Observe(time.Since(start).Seconds())
}
