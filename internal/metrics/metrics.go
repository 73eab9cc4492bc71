// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

// Package metrics defines the Prometheus collectors exported on /metrics.
//
// Collectors are registered with the default registry through promauto at
// package init. Callers use the Record* helpers rather than touching the
// collectors directly.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tomtom215/clusterrec/internal/recommend"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	// Generation run metrics
	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clusterrec_run_duration_seconds",
			Help:    "Duration of full generation runs in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		},
	)

	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clusterrec_runs_total",
			Help: "Total number of generation runs by outcome",
		},
		[]string{"outcome"},
	)

	LastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clusterrec_last_successful_run_timestamp_seconds",
			Help: "Unix time of the last successful generation run",
		},
	)

	LastRunRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clusterrec_last_run_rows",
			Help: "Rows emitted by the last successful generation run",
		},
	)

	GenerationTriggers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clusterrec_generation_triggers_total",
			Help: "Manual generation triggers by result",
		},
		[]string{"result"}, // "accepted", "coalesced", "busy"
	)

	// Per-user metrics
	UsersProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clusterrec_users_processed_total",
			Help: "Total number of users processed",
		},
	)

	RowsEmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clusterrec_rows_emitted_total",
			Help: "Total number of recommendation rows emitted",
		},
	)

	DegenerateProfiles = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clusterrec_degenerate_profiles_total",
			Help: "Users whose positive-interest vector was zero",
		},
	)

	CandidatePaths = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clusterrec_candidate_path_total",
			Help: "Users by candidate generation path",
		},
		[]string{"path"}, // "few_interest", "clusters"
	)

	ClustersPerUser = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clusterrec_clusters_per_user",
			Help:    "Number of interest clusters queried per multi-interest user",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 8, 10, 15, 20},
		},
	)

	NoiseItems = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clusterrec_noise_items_total",
			Help: "Good items labeled as noise by the clusterer",
		},
	)

	SupplementedUsers = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clusterrec_supplemented_users_total",
			Help: "Users whose list was topped up from the fallback pool",
		},
	)

	UserDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clusterrec_user_generation_seconds",
			Help:    "Time spent generating one user's list",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	// Output sink metrics
	SinkWriteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clusterrec_sink_write_duration_seconds",
			Help:    "Duration of writing a run to an output sink",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"sink"}, // "duckdb", "store", "events"
	)

	SinkWriteErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clusterrec_sink_write_errors_total",
			Help: "Failed writes to an output sink",
		},
		[]string{"sink"},
	)

	// Cache metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clusterrec_cache_hits_total",
			Help: "Recommendation read cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clusterrec_cache_misses_total",
			Help: "Recommendation read cache misses",
		},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clusterrec_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clusterrec_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clusterrec_api_active_requests",
			Help: "Number of in-flight API requests",
		},
	)
)

// RecordRun records the outcome of a generation run.
func RecordRun(duration time.Duration, rows int, err error) {
	RunDuration.Observe(duration.Seconds())
	if err != nil {
		RunsTotal.WithLabelValues(OutcomeFailure).Inc()
		return
	}
	RunsTotal.WithLabelValues(OutcomeSuccess).Inc()
	LastRunTimestamp.Set(float64(time.Now().Unix()))
	LastRunRows.Set(float64(rows))
}

// RecordTrigger records how a manual trigger was handled.
func RecordTrigger(result string) {
	GenerationTriggers.WithLabelValues(result).Inc()
}

// RecordSinkWrite records a write of one run to an output sink.
func RecordSinkWrite(sink string, duration time.Duration, err error) {
	SinkWriteDuration.WithLabelValues(sink).Observe(duration.Seconds())
	if err != nil {
		SinkWriteErrors.WithLabelValues(sink).Inc()
	}
}

// RecordCacheLookup records a read cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		CacheHits.Inc()
	} else {
		CacheMisses.Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// EngineObserver feeds per-user engine reports into the collectors.
type EngineObserver struct{}

// ObserveUser implements recommend.Observer.
func (EngineObserver) ObserveUser(r recommend.UserReport) {
	UsersProcessed.Inc()
	RowsEmitted.Add(float64(r.Rows))
	UserDuration.Observe(r.Duration.Seconds())
	NoiseItems.Add(float64(r.NoiseItems))
	if r.Degenerate {
		DegenerateProfiles.Inc()
	}
	if r.FewInterest {
		CandidatePaths.WithLabelValues("few_interest").Inc()
	} else {
		CandidatePaths.WithLabelValues("clusters").Inc()
		ClustersPerUser.Observe(float64(r.Clusters))
	}
	if r.Supplement > 0 {
		SupplementedUsers.Inc()
	}
}

var _ recommend.Observer = EngineObserver{}
