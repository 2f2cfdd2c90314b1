// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

// Package generators implements the candidate generation strategies:
// user-based and item-based collaborative filtering over the interaction
// matrix, content-based filtering over genre preferences, time-of-day
// contextual scoring, a pluggable model scorer, and the popularity fallback.
//
// Every generator satisfies recommend.Generator, excludes items the user has
// already interacted with, and returns at most limit candidates sorted by
// descending score.
package generators
