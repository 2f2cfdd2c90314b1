// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

package generators

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cadenzafm/cadenza/internal/recommend"
)

const (
	// minGenrePreference filters out genres the user is indifferent to.
	minGenrePreference = 0.5

	contentConfidence = 0.75
)

// ContentBased generates candidates from catalog items in the user's
// preferred genres.
type ContentBased struct {
	catalog recommend.Catalog
	prefs   recommend.PreferenceProvider
	logger  zerolog.Logger
}

// NewContentBased creates a content-based generator.
func NewContentBased(catalog recommend.Catalog, prefs recommend.PreferenceProvider, logger zerolog.Logger) *ContentBased {
	return &ContentBased{
		catalog: catalog,
		prefs:   prefs,
		logger:  logger.With().Str("generator", "content_based").Logger(),
	}
}

// Name implements recommend.Generator.
func (g *ContentBased) Name() string { return "content_based" }

// Algorithm implements recommend.Generator.
func (g *ContentBased) Algorithm() recommend.Algorithm { return recommend.AlgorithmContent }

// Generate looks up the user's genre preference vector, keeps genres above
// minGenrePreference, and scores catalog tracks from those genres by
// preference strength. Items the user already interacted with are excluded.
func (g *ContentBased) Generate(ctx context.Context, userID string, m *recommend.Matrix, limit int) ([]recommend.Candidate, error) {
	prefs, err := g.prefs.GenrePreferences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("genre preferences for %s: %w", userID, err)
	}
	if len(prefs) == 0 {
		g.logger.Debug().Str("user_id", userID).Msg("no genre preferences, skipping content-based")
		return nil, nil
	}

	seen := m.UserRatings(userID)

	candidates := make([]recommend.Candidate, 0, limit)
	for genre, strength := range prefs {
		if strength <= minGenrePreference {
			continue
		}

		tracks, err := g.catalog.TracksByGenre(ctx, genre, limit)
		if err != nil {
			return nil, fmt.Errorf("catalog lookup for genre %q: %w", genre, err)
		}

		for _, t := range tracks {
			if _, interacted := seen[t.ID]; interacted {
				continue
			}
			candidates = append(candidates, recommend.Candidate{
				ItemID:     t.ID,
				Title:      t.Title,
				Artist:     t.Artist,
				Genre:      t.Genre,
				Score:      strength,
				Confidence: contentConfidence,
				Algorithm:  recommend.AlgorithmContent,
				Reason:     fmt.Sprintf("Because you listen to %s", genre),
			})
		}
	}
	candidates = sortAndTruncate(candidates, limit)

	return candidates, nil
}

var _ recommend.Generator = (*ContentBased)(nil)
