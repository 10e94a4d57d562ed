// Package metrics exposes Prometheus metrics for the update pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chase_pipeline_runs_total",
		Help: "Pipeline runs by result.",
	}, []string{"result"})

	FeedFetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chase_feed_fetch_failures_total",
		Help: "Per-feed fetch failures inside the fan-out stage.",
	})

	ReleasesDiscovered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chase_releases_discovered_total",
		Help: "Newly recorded releases.",
	})

	AnalyzeProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chase_analyze_processed_total",
		Help: "Analyze worker messages by result.",
	}, []string{"result"})

	NotificationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chase_notifications_created_total",
		Help: "Digest notifications created.",
	})

	PipelineDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chase_pipeline_duration_seconds",
		Help:    "Wall-clock duration of one pipeline run.",
		Buckets: prometheus.DefBuckets,
	})
)

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler() http.Handler {
	return promhttp.Handler()
}
