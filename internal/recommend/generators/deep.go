// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

package generators

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/cadenzafm/cadenza/internal/recommend"
)

// deepConfidence is deliberately modest until a trained model replaces the
// stand-in scorer.
const deepConfidence = 0.6

// PseudoScorer is a deterministic stand-in for a trained model. It hashes
// (seed, userID, itemID) into a stable score in [0, 1], so repeated requests
// rank identically while different users see different orderings.
type PseudoScorer struct {
	seed int64
}

// NewPseudoScorer creates the stand-in scorer.
func NewPseudoScorer(seed int64) *PseudoScorer {
	return &PseudoScorer{seed: seed}
}

// Name implements recommend.Scorer.
func (s *PseudoScorer) Name() string { return "pseudo" }

// Score implements recommend.Scorer.
func (s *PseudoScorer) Score(ctx context.Context, userID string, itemIDs []string) (map[string]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[string]float64, len(itemIDs))
	for _, item := range itemIDs {
		h := fnv.New64a()
		fmt.Fprintf(h, "%d|%s|%s", s.seed, userID, item)
		out[item] = float64(h.Sum64()%10000) / 10000.0
	}
	return out, nil
}

var _ recommend.Scorer = (*PseudoScorer)(nil)

// Deep generates candidates by scoring the user's unseen items with a
// pluggable model scorer.
type Deep struct {
	scorer recommend.Scorer
	logger zerolog.Logger
}

// NewDeep creates a model-scorer generator.
func NewDeep(scorer recommend.Scorer, logger zerolog.Logger) *Deep {
	return &Deep{
		scorer: scorer,
		logger: logger.With().Str("generator", "deep").Str("scorer", scorer.Name()).Logger(),
	}
}

// Name implements recommend.Generator.
func (g *Deep) Name() string { return "deep" }

// Algorithm implements recommend.Generator.
func (g *Deep) Algorithm() recommend.Algorithm { return recommend.AlgorithmDeep }

// Generate scores every unseen matrix item and keeps the top limit.
func (g *Deep) Generate(ctx context.Context, userID string, m *recommend.Matrix, limit int) ([]recommend.Candidate, error) {
	seen := m.UserRatings(userID)

	pool := make([]string, 0, m.ItemCount())
	for _, item := range m.Items() {
		if _, interacted := seen[item]; interacted {
			continue
		}
		pool = append(pool, item)
	}
	if len(pool) == 0 {
		return nil, nil
	}

	scores, err := g.scorer.Score(ctx, userID, pool)
	if err != nil {
		return nil, fmt.Errorf("scorer %s: %w", g.scorer.Name(), err)
	}

	candidates := make([]recommend.Candidate, 0, len(scores))
	for item, score := range scores {
		candidates = append(candidates, recommend.Candidate{
			ItemID:     item,
			Score:      score,
			Confidence: deepConfidence,
			Algorithm:  recommend.AlgorithmDeep,
			Reason:     "Predicted to match your listening profile",
		})
	}
	candidates = sortAndTruncate(candidates, limit)

	return candidates, nil
}

var _ recommend.Generator = (*Deep)(nil)
