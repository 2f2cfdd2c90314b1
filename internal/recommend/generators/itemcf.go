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

// itemCFConfidence is fixed: item neighborhoods are denser and more stable
// than user neighborhoods, so size-based scaling adds little.
const itemCFConfidence = 0.8

// ItemCF generates candidates via item-based collaborative filtering: items
// co-rated with the items the user already likes.
type ItemCF struct {
	cfg    *recommend.Config
	logger zerolog.Logger
}

// NewItemCF creates an item-based collaborative filtering generator.
func NewItemCF(cfg *recommend.Config, logger zerolog.Logger) *ItemCF {
	return &ItemCF{
		cfg:    cfg,
		logger: logger.With().Str("generator", "item_cf").Logger(),
	}
}

// Name implements recommend.Generator.
func (g *ItemCF) Name() string { return "item_cf" }

// Algorithm implements recommend.Generator.
func (g *ItemCF) Algorithm() recommend.Algorithm { return recommend.AlgorithmItemCF }

// Generate seeds from the user's well-rated items and accumulates
// rating-weighted item-item similarity over unseen items.
func (g *ItemCF) Generate(ctx context.Context, userID string, m *recommend.Matrix, limit int) ([]recommend.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seen := m.UserRatings(userID)
	if len(seen) == 0 {
		g.logger.Debug().Str("user_id", userID).Msg("no interactions in window, skipping item CF")
		return nil, nil
	}

	raw := make(map[string]float64)
	for seed, rating := range seen {
		if rating < g.cfg.SeedRatingMin {
			continue
		}

		type similar struct {
			id  string
			sim float64
		}
		related := make([]similar, 0, 32)
		for _, other := range m.Items() {
			if other == seed {
				continue
			}
			if _, interacted := seen[other]; interacted {
				continue
			}
			sim := recommend.ItemSimilarity(m, seed, other)
			if sim <= g.cfg.MinSimilarity {
				continue
			}
			related = append(related, similar{id: other, sim: sim})
		}
		sort.Slice(related, func(i, j int) bool { return related[i].sim > related[j].sim })
		if len(related) > g.cfg.MaxSimilarItems {
			related = related[:g.cfg.MaxSimilarItems]
		}

		for _, r := range related {
			raw[r.id] += rating * r.sim
		}
	}

	candidates := make([]recommend.Candidate, 0, len(raw))
	for item, score := range raw {
		candidates = append(candidates, recommend.Candidate{
			ItemID:     item,
			Score:      normalize(score, g.cfg.NormalizationDivisor),
			Confidence: itemCFConfidence,
			Algorithm:  recommend.AlgorithmItemCF,
			Reason:     "Frequently played alongside tracks you like",
		})
	}
	candidates = sortAndTruncate(candidates, limit)

	return candidates, nil
}

var _ recommend.Generator = (*ItemCF)(nil)
