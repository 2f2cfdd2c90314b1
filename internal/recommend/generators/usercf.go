// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

package generators

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/cadenzafm/cadenza/internal/recommend"
)

// confidencePerPeer scales user-CF confidence with neighborhood size,
// capped at maxCFConfidence.
const (
	confidencePerPeer = 0.02
	maxCFConfidence   = 0.9
)

// UserCF generates candidates via user-based collaborative filtering: items
// liked by users whose interaction vectors resemble the target user's.
type UserCF struct {
	cfg    *recommend.Config
	logger zerolog.Logger
}

// NewUserCF creates a user-based collaborative filtering generator.
func NewUserCF(cfg *recommend.Config, logger zerolog.Logger) *UserCF {
	return &UserCF{
		cfg:    cfg,
		logger: logger.With().Str("generator", "user_cf").Logger(),
	}
}

// Name implements recommend.Generator.
func (g *UserCF) Name() string { return "user_cf" }

// Algorithm implements recommend.Generator.
func (g *UserCF) Algorithm() recommend.Algorithm { return recommend.AlgorithmUserCF }

// Generate finds the user's nearest neighbors by cosine similarity and
// accumulates similarity-weighted ratings over items the user has not seen.
func (g *UserCF) Generate(ctx context.Context, userID string, m *recommend.Matrix, limit int) ([]recommend.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seen := m.UserRatings(userID)
	if len(seen) == 0 {
		g.logger.Debug().Str("user_id", userID).Msg("no interactions in window, skipping user CF")
		return nil, nil
	}

	type neighbor struct {
		id  string
		sim float64
	}
	neighbors := make([]neighbor, 0, 64)
	for _, other := range m.Users() {
		if other == userID {
			continue
		}
		sim := recommend.UserSimilarity(m, userID, other)
		if sim <= g.cfg.MinSimilarity {
			continue
		}
		neighbors = append(neighbors, neighbor{id: other, sim: sim})
	}
	sort.Slice(neighbors, func(i, j int) bool { return neighbors[i].sim > neighbors[j].sim })
	if len(neighbors) > g.cfg.MaxSimilarUsers {
		neighbors = neighbors[:g.cfg.MaxSimilarUsers]
	}
	if len(neighbors) == 0 {
		return nil, nil
	}

	confidence := confidencePerPeer * float64(len(neighbors))
	if confidence > maxCFConfidence {
		confidence = maxCFConfidence
	}

	// Accumulate similarity-weighted ratings for unseen items.
	raw := make(map[string]float64)
	for _, n := range neighbors {
		for item, rating := range m.UserRatings(n.id) {
			if _, interacted := seen[item]; interacted {
				continue
			}
			raw[item] += n.sim * rating
		}
	}

	candidates := make([]recommend.Candidate, 0, len(raw))
	for item, score := range raw {
		candidates = append(candidates, recommend.Candidate{
			ItemID:     item,
			Score:      normalize(score, g.cfg.NormalizationDivisor),
			Confidence: confidence,
			Algorithm:  recommend.AlgorithmUserCF,
			Reason:     fmt.Sprintf("Listeners with similar taste (%d matched) played this", len(neighbors)),
		})
	}
	candidates = sortAndTruncate(candidates, limit)

	return candidates, nil
}

// normalize maps an unbounded accumulated score into [0, 1].
func normalize(raw, divisor float64) float64 {
	s := raw / divisor
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// sortAndTruncate orders candidates by descending score with itemID as a
// deterministic tiebreak, truncating in place to limit.
func sortAndTruncate(candidates []recommend.Candidate, limit int) []recommend.Candidate {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].ItemID < candidates[j].ItemID
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

var _ recommend.Generator = (*UserCF)(nil)
