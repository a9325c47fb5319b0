package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Per-source counters for the activity fan-out and the bookmark pipeline.
// HTTP-level metrics come from the fiberprometheus middleware; these cover
// what happens behind it against the chain node.
var (
	SourceQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_source_queries_total",
			Help: "Event source queries issued by the activity aggregator",
		},
		[]string{"source"},
	)

	SourceQueryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_source_query_failures_total",
			Help: "Event source queries that failed and were absorbed",
		},
		[]string{"source"},
	)

	BookmarkResolutions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookmark_resolutions_total",
			Help: "Bookmark records run through the resolution pipeline",
		},
	)

	BookmarkResolutionFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookmark_resolution_failures_total",
			Help: "Bookmark resolutions recorded as failures",
		},
	)
)
