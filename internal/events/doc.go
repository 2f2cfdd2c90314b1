// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

// Package events defines the behavioral event model and its ingestion path.
//
// BehaviorEvent is the canonical record of a user action (like, playlist add,
// review, search, session). Events carry no explicit preference; the pipeline
// derives an implicit score in [0, 1] from the event kind via ImplicitScore.
//
// Ingestion flows from a durable NATS JetStream subscription (Watermill)
// through validation into a windowed in-memory Store. The Store implements
// Source, the narrow read interface the recommendation engine consumes.
// ResilientSource adds circuit breaker protection so an unhealthy source
// degrades to an empty window instead of failing recommendation requests.
package events
