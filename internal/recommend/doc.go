// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

// Package recommend implements the recommendation fusion pipeline: a sparse
// user-item interaction matrix built from behavioral events, cosine
// similarity over matrix rows and columns, a weighted ensemble combiner, and
// the orchestrating engine that fans out to candidate generators, merges
// their output, and hands the result to a diversity reranker.
//
// Candidate generation strategies live in the generators subpackage and
// diversity reranking in the reranking subpackage; both plug into the engine
// through the Generator and Reranker interfaces defined here.
package recommend
