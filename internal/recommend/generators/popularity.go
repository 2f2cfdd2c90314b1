// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

package generators

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/cadenzafm/cadenza/internal/recommend"
)

// popularityConfidence is low: popularity carries no personalization signal.
const popularityConfidence = 0.3

// Popularity ranks items by distinct-listener count. The orchestrator uses
// it as the fallback when every personalized strategy comes back empty.
type Popularity struct {
	logger zerolog.Logger
}

// NewPopularity creates the popularity fallback generator.
func NewPopularity(logger zerolog.Logger) *Popularity {
	return &Popularity{logger: logger.With().Str("generator", "popularity").Logger()}
}

// Name implements recommend.Generator.
func (g *Popularity) Name() string { return "popularity" }

// Algorithm implements recommend.Generator.
func (g *Popularity) Algorithm() recommend.Algorithm { return recommend.AlgorithmPopularity }

// Generate ranks unseen items by how many distinct users interacted with
// them, scoring relative to the most popular item in the window.
func (g *Popularity) Generate(ctx context.Context, userID string, m *recommend.Matrix, limit int) ([]recommend.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seen := m.UserRatings(userID)

	maxCount := 0
	items := m.Items()
	for _, item := range items {
		if c := m.InteractionCount(item); c > maxCount {
			maxCount = c
		}
	}
	if maxCount == 0 {
		return nil, nil
	}

	candidates := make([]recommend.Candidate, 0, len(items))
	for _, item := range items {
		if _, interacted := seen[item]; interacted {
			continue
		}
		count := m.InteractionCount(item)
		if count == 0 {
			continue
		}
		candidates = append(candidates, recommend.Candidate{
			ItemID:     item,
			Score:      float64(count) / float64(maxCount),
			Confidence: popularityConfidence,
			Algorithm:  recommend.AlgorithmPopularity,
			Reason:     "Popular with listeners right now",
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].ItemID < candidates[j].ItemID
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return candidates, nil
}

var _ recommend.Generator = (*Popularity)(nil)
