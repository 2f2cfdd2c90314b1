// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

package reranking

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cadenzafm/cadenza/internal/recommend"
)

// MMR reranks a relevance-sorted candidate list with Maximal Marginal
// Relevance, enforcing hard diversity constraints: near-duplicate title
// suppression, a per-artist cap, and a per-genre cap.
type MMR struct {
	cfg    recommend.DiversityConfig
	logger zerolog.Logger
}

// NewMMR creates an MMR diversity reranker.
func NewMMR(cfg recommend.DiversityConfig, logger zerolog.Logger) *MMR {
	return &MMR{
		cfg:    cfg,
		logger: logger.With().Str("reranker", "mmr").Logger(),
	}
}

// Name implements recommend.Reranker.
func (r *MMR) Name() string { return "mmr" }

// Rerank selects up to k items from the relevance-sorted input. The first
// selection is always the top-relevance item. Each following round scores
// every remaining candidate as
//
//	mmr(c) = lambda*relevance(c) - (1-lambda)*max similarity(c, selected)
//
// and takes the maximizer, subject to hard constraints applied in order:
// title near-duplicate rejection, then the artist cap, then the genre cap.
// A candidate rejected by a constraint is removed from the pool, not retried.
// When candidates run out the output is shorter than k; the reranker never
// fabricates items.
func (r *MMR) Rerank(ctx context.Context, items []recommend.Candidate, k int) []recommend.Candidate {
	if k <= 0 || len(items) == 0 {
		return nil
	}
	// Per-genre cap scales with the requested size: max(1, k/divisor).
	genreCap := k / r.cfg.GenreCapDivisor
	if genreCap < 1 {
		genreCap = 1
	}

	if k > len(items) {
		k = len(items)
	}

	pool := make([]recommend.Candidate, len(items))
	copy(pool, items)

	selected := make([]recommend.Candidate, 0, k)
	artistCount := make(map[string]int)
	genreCount := make(map[string]int)
	titles := make([]string, 0, k)

	accept := func(c recommend.Candidate) {
		selected = append(selected, c)
		if a := normalizeKey(c.Artist); a != "" {
			artistCount[a]++
		}
		if g := normalizeKey(c.Genre); g != "" {
			genreCount[g]++
		}
		if t := strings.TrimSpace(c.Title); t != "" {
			titles = append(titles, t)
		}
	}

	// Seed with the top-relevance item unconditionally.
	accept(pool[0])
	pool = pool[1:]

	for len(selected) < k && len(pool) > 0 {
		if ctx.Err() != nil {
			break
		}

		best := -1
		bestScore := 0.0
		for i := range pool {
			score := r.cfg.MMRLambda*pool[i].Score - (1-r.cfg.MMRLambda)*r.maxSimilarity(pool[i], selected)
			if best == -1 || score > bestScore {
				best = i
				bestScore = score
			}
		}

		c := pool[best]
		pool = append(pool[:best], pool[best+1:]...)

		if reason := r.violates(c, titles, artistCount, genreCount, genreCap); reason != "" {
			r.logger.Debug().
				Str("item_id", c.ItemID).
				Str("constraint", reason).
				Msg("candidate skipped by diversity constraint")
			continue
		}

		accept(c)
	}

	return selected
}

// violates checks the hard constraints in order and names the first one hit,
// or returns "" when the candidate is acceptable.
func (r *MMR) violates(c recommend.Candidate, titles []string, artistCount, genreCount map[string]int, genreCap int) string {
	if t := strings.TrimSpace(c.Title); t != "" {
		for _, accepted := range titles {
			if TitleSimilarity(t, accepted) >= r.cfg.TitleSimilarityThreshold {
				return "duplicate_title"
			}
		}
	}
	if a := normalizeKey(c.Artist); a != "" && artistCount[a] >= r.cfg.ArtistCap {
		return "artist_cap"
	}
	if g := normalizeKey(c.Genre); g != "" && genreCount[g] >= genreCap {
		return "genre_cap"
	}
	return ""
}

// maxSimilarity returns the candidate's maximum pairwise similarity to the
// selected set. Two candidates from the same strategy are assumed similar;
// everything else gets a low baseline.
func (r *MMR) maxSimilarity(c recommend.Candidate, selected []recommend.Candidate) float64 {
	maxSim := 0.0
	for i := range selected {
		sim := r.cfg.BaselineSimilarity
		if selected[i].Algorithm == c.Algorithm {
			sim = r.cfg.SameAlgorithmSimilarity
		}
		if sim > maxSim {
			maxSim = sim
		}
	}
	return maxSim
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

var _ recommend.Reranker = (*MMR)(nil)
