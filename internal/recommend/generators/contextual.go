// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

package generators

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cadenzafm/cadenza/internal/recommend"
)

const contextualConfidence = 0.7

// Contextual generates candidates suited to the current time-of-day bucket.
// All candidates from one invocation share a single relevance score derived
// from the hour.
type Contextual struct {
	catalog recommend.Catalog
	logger  zerolog.Logger

	// now is injectable for tests.
	now func() time.Time
}

// NewContextual creates a time-of-day contextual generator.
func NewContextual(catalog recommend.Catalog, logger zerolog.Logger) *Contextual {
	return &Contextual{
		catalog: catalog,
		logger:  logger.With().Str("generator", "contextual").Logger(),
		now:     time.Now,
	}
}

// Name implements recommend.Generator.
func (g *Contextual) Name() string { return "contextual" }

// Algorithm implements recommend.Generator.
func (g *Contextual) Algorithm() recommend.Algorithm { return recommend.AlgorithmContextual }

// ContextBucket maps an hour of day to a listening context bucket.
func ContextBucket(hour int) string {
	switch {
	case hour >= 6 && hour < 9:
		return "morning"
	case hour >= 9 && hour < 12:
		return "work"
	case hour >= 12 && hour < 14:
		return "lunch"
	case hour >= 14 && hour < 17:
		return "afternoon"
	case hour >= 17 && hour < 22:
		return "evening"
	default:
		return "night"
	}
}

// bucketRelevance is the piecewise time-of-day relevance table. Evening is
// peak listening time; night trails closely, work hours score lowest.
func bucketRelevance(bucket string) float64 {
	switch bucket {
	case "morning":
		return 0.7
	case "work":
		return 0.5
	case "lunch":
		return 0.6
	case "afternoon":
		return 0.6
	case "evening":
		return 0.9
	case "night":
		return 0.8
	default:
		return 0.5
	}
}

// Generate emits catalog tracks tagged for the current context bucket,
// scored by the bucket's time-of-day relevance.
func (g *Contextual) Generate(ctx context.Context, userID string, m *recommend.Matrix, limit int) ([]recommend.Candidate, error) {
	bucket := ContextBucket(g.now().Hour())
	relevance := bucketRelevance(bucket)

	tracks, err := g.catalog.TracksForBucket(ctx, bucket, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog lookup for bucket %q: %w", bucket, err)
	}

	seen := m.UserRatings(userID)

	candidates := make([]recommend.Candidate, 0, len(tracks))
	for _, t := range tracks {
		if _, interacted := seen[t.ID]; interacted {
			continue
		}
		candidates = append(candidates, recommend.Candidate{
			ItemID:     t.ID,
			Title:      t.Title,
			Artist:     t.Artist,
			Genre:      t.Genre,
			Score:      relevance,
			Confidence: contextualConfidence,
			Algorithm:  recommend.AlgorithmContextual,
			Reason:     fmt.Sprintf("A good fit for %s listening", bucket),
		})
	}
	candidates = sortAndTruncate(candidates, limit)

	return candidates, nil
}

var _ recommend.Generator = (*Contextual)(nil)
