// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation pipeline metrics

	RecommendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"outcome"}, // "ok", "invalid_input", "fallback", "empty"
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "End-to-end recommendation latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	RecommendCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cache_hits_total",
			Help: "Total number of recommendation cache hits",
		},
	)

	RecommendCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cache_misses_total",
			Help: "Total number of recommendation cache misses",
		},
	)

	// Candidate generator metrics

	GeneratorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generator_duration_seconds",
			Help:    "Per-generator candidate generation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"generator"},
	)

	GeneratorFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generator_failures_total",
			Help: "Total number of generator failures substituted with empty lists",
		},
		[]string{"generator"},
	)

	GeneratorCandidates = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generator_candidates",
			Help:    "Number of candidates produced per generator invocation",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 200},
		},
		[]string{"generator"},
	)

	// Matrix metrics

	MatrixBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matrix_build_duration_seconds",
			Help:    "User-item matrix build duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	MatrixUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "matrix_users",
			Help: "Number of users in the most recently built interaction matrix",
		},
	)

	MatrixItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "matrix_items",
			Help: "Number of items in the most recently built interaction matrix",
		},
	)

	// Event ingestion metrics

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "behavior_events_consumed_total",
			Help: "Total number of behavior events accepted into the store",
		},
		[]string{"kind"},
	)

	EventsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "behavior_events_rejected_total",
			Help: "Total number of behavior events dropped at ingest",
		},
		[]string{"reason"}, // "malformed", "invalid"
	)

	EventStoreSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "behavior_event_store_size",
			Help: "Current number of events retained in the windowed store",
		},
	)
)

// ObserveRecommendDuration records an end-to-end request duration.
func ObserveRecommendDuration(start time.Time) {
	RecommendDuration.Observe(time.Since(start).Seconds())
}

// ObserveGenerator records one generator invocation.
func ObserveGenerator(name string, start time.Time, produced int) {
	GeneratorDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	GeneratorCandidates.WithLabelValues(name).Observe(float64(produced))
}
