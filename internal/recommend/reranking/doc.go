// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

// Package reranking implements diversity-aware reordering of merged
// candidate lists. The MMR reranker balances relevance against redundancy
// and enforces hard constraints: near-duplicate title suppression via
// normalized edit distance, a per-artist cap, and a per-genre cap.
package reranking
