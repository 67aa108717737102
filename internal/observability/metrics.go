// Package observability provides Prometheus metrics for the application.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics. All record methods are nil-safe
// so components can run without metrics in tests.
type Metrics struct {
	// Video metrics
	VideosProcessed *prometheus.CounterVec
	FetchDuration   prometheus.Histogram

	// Extraction metrics
	ExtractsTotal    *prometheus.CounterVec
	CookieRotations  prometheus.Counter
	RateLimitSignals prometheus.Counter

	// Persistence metrics
	UploadsTotal    *prometheus.CounterVec
	ShardRollovers  prometheus.Counter
	ShardEntries    prometheus.Gauge
	ProcessedVideos prometheus.Gauge
}

// New creates and registers all application metrics.
func New() *Metrics {
	return &Metrics{
		VideosProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ytharvest",
			Subsystem: "videos",
			Name:      "processed_total",
			Help:      "Total number of videos processed, by outcome",
		}, []string{"outcome"}),
		FetchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ytharvest",
			Subsystem: "videos",
			Name:      "fetch_duration_seconds",
			Help:      "Histogram of full per-video fetch duration in seconds",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 120},
		}),

		ExtractsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ytharvest",
			Subsystem: "extractor",
			Name:      "extracts_total",
			Help:      "Total number of primary extraction attempts, by status",
		}, []string{"status"}),
		CookieRotations: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "ytharvest",
			Subsystem: "extractor",
			Name:      "cookie_rotations_total",
			Help:      "Total number of cookie rotations",
		}),
		RateLimitSignals: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "ytharvest",
			Subsystem: "extractor",
			Name:      "rate_limit_signals_total",
			Help:      "Total number of rate-limit signals observed during caption fetches",
		}),

		UploadsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ytharvest",
			Subsystem: "hub",
			Name:      "uploads_total",
			Help:      "Total number of remote uploads, by artifact and status",
		}, []string{"artifact", "status"}),
		ShardRollovers: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "ytharvest",
			Subsystem: "shard",
			Name:      "rollovers_total",
			Help:      "Total number of shard rollovers",
		}),
		ShardEntries: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "ytharvest",
			Subsystem: "shard",
			Name:      "entries_current",
			Help:      "Number of video entries in the active shard",
		}),
		ProcessedVideos: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "ytharvest",
			Subsystem: "progress",
			Name:      "processed_videos",
			Help:      "Number of video IDs in the progress set",
		}),
	}
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordVideoProcessed records one finished video by outcome ("ok" or "empty").
func (m *Metrics) RecordVideoProcessed(outcome string) {
	if m == nil {
		return
	}

	m.VideosProcessed.WithLabelValues(outcome).Inc()
}

// ObserveFetchDuration records the full per-video fetch duration.
func (m *Metrics) ObserveFetchDuration(seconds float64) {
	if m == nil {
		return
	}

	m.FetchDuration.Observe(seconds)
}

// RecordExtract records one primary extraction attempt by status.
func (m *Metrics) RecordExtract(status string) {
	if m == nil {
		return
	}

	m.ExtractsTotal.WithLabelValues(status).Inc()
}

// RecordCookieRotation records one cookie rotation.
func (m *Metrics) RecordCookieRotation() {
	if m == nil {
		return
	}

	m.CookieRotations.Inc()
}

// RecordRateLimitSignal records one observed rate-limit signal.
func (m *Metrics) RecordRateLimitSignal() {
	if m == nil {
		return
	}

	m.RateLimitSignals.Inc()
}

// RecordUpload records one remote upload attempt.
func (m *Metrics) RecordUpload(artifact, status string) {
	if m == nil {
		return
	}

	m.UploadsTotal.WithLabelValues(artifact, status).Inc()
}

// RecordShardRollover records one shard rollover.
func (m *Metrics) RecordShardRollover() {
	if m == nil {
		return
	}

	m.ShardRollovers.Inc()
}

// SetShardEntries sets the active shard entry count.
func (m *Metrics) SetShardEntries(count int) {
	if m == nil {
		return
	}

	m.ShardEntries.Set(float64(count))
}

// SetProcessedVideos sets the progress-set size.
func (m *Metrics) SetProcessedVideos(count int) {
	if m == nil {
		return
	}

	m.ProcessedVideos.Set(float64(count))
}
