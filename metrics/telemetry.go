// Package metrics holds the process-wide Prometheus collectors.
// They register on the default registry and are served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels for RecommendRequests.
const (
	ResultMatched          = "matched"
	ResultNoMatches        = "no_matches"
	ResultExtractionFailed = "extraction_failed"
	ResultError            = "error"
)

var (
	// Throughput
	RecommendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recommendit_recommend_requests_total",
		Help: "Recommendation requests by outcome",
	}, []string{"result"})

	URLFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recommendit_url_fetches_total",
		Help: "Job posting fetches by outcome (ok, failed)",
	}, []string{"outcome"})

	EmbeddedTexts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recommendit_embedded_texts_total",
		Help: "Texts sent to the embedding model during builds",
	})

	// Latency
	RecommendDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "recommendit_recommend_duration_seconds",
		Help:    "Time taken to resolve, embed, query and rank a request",
		Buckets: prometheus.DefBuckets,
	})

	BuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "recommendit_build_duration_seconds",
		Help:    "Time taken to build the index, including embedding",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})

	// State
	IndexEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "recommendit_index_entries",
		Help: "Number of entries in the live index",
	})
)
