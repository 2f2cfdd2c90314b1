// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

// Package metrics provides Prometheus instrumentation for the recommendation
// pipeline: request latency and outcomes, per-generator timings and failures,
// matrix build cost, cache efficiency, and event ingestion counters.
//
// Collectors are registered via promauto at package init and exposed by the
// metrics HTTP service at /metrics.
package metrics
