package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChecksTotal counts completed compatibility checks by category.
	ChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchminds_checks_total",
			Help: "Total number of completed compatibility checks",
		},
		[]string{"category"},
	)

	// IncompleteTotal counts submissions stopped by form gating.
	IncompleteTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matchminds_incomplete_submissions_total",
			Help: "Total number of compatibility submissions with missing answers",
		},
	)

	// CompatibilityPercentage tracks the distribution of results.
	CompatibilityPercentage = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matchminds_compatibility_percentage",
			Help:    "Distribution of compatibility percentages",
			Buckets: []float64{0, 20, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	// SuggestionsTotal counts suggestion requests by outcome.
	SuggestionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchminds_suggestion_requests_total",
			Help: "Total number of suggestion requests",
		},
		[]string{"outcome"},
	)

	// VectorCacheHits and VectorCacheMisses track the scale/cluster cache.
	VectorCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matchminds_vector_cache_hits_total",
			Help: "Total number of scaled-vector cache hits",
		},
	)
	VectorCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matchminds_vector_cache_misses_total",
			Help: "Total number of scaled-vector cache misses",
		},
	)

	// ArtifactReloads counts admin reloads by outcome.
	ArtifactReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchminds_artifact_reloads_total",
			Help: "Total number of artifact reload attempts",
		},
		[]string{"outcome"},
	)
)
