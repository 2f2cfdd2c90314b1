// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

// Package cache provides a TTL cache with single-flight computation.
//
// The recommendation pipeline caches two expensive products: the population
// interaction matrix (keyed by computation window) and per-(user, limit)
// recommendation responses. Both are cached through GetOrCompute, which
// guarantees at most one in-flight computation per key under concurrent
// requests; late arrivals share the winner's result instead of recomputing.
package cache
