// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

package generators

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/cadenzafm/cadenza/internal/events"
	"github.com/cadenzafm/cadenza/internal/recommend"
)

// matrixFromRatings builds an interaction matrix with approximately the given
// ratings (review events with rating*5 stars).
func matrixFromRatings(t *testing.T, ratings map[string]map[string]float64) *recommend.Matrix {
	t.Helper()
	now := time.Now()

	var evts []events.BehaviorEvent
	for user, items := range ratings {
		for item, rating := range items {
			e := events.NewEvent(user, item, events.ItemTypeTrack, events.KindReviewWrite, now)
			e.Rating = int(math.Round(rating * 5))
			evts = append(evts, e)
		}
	}
	return recommend.BuildMatrix(evts, now.Add(-time.Hour), events.ItemTypeTrack)
}

// assertScoresInRange verifies every candidate score and confidence is in [0, 1].
func assertScoresInRange(t *testing.T, candidates []recommend.Candidate) {
	t.Helper()
	for _, c := range candidates {
		if c.Score < 0 || c.Score > 1 {
			t.Errorf("candidate %s score %v outside [0, 1]", c.ItemID, c.Score)
		}
		if c.Confidence < 0 || c.Confidence > 1 {
			t.Errorf("candidate %s confidence %v outside [0, 1]", c.ItemID, c.Confidence)
		}
	}
}

// assertExcludes verifies no candidate targets a seen item.
func assertExcludes(t *testing.T, candidates []recommend.Candidate, seen ...string) {
	t.Helper()
	for _, c := range candidates {
		for _, s := range seen {
			if c.ItemID == s {
				t.Errorf("candidate %s is an item the user already interacted with", c.ItemID)
			}
		}
	}
}

// fixtureCatalog is an in-memory Catalog + PreferenceProvider for tests.
type fixtureCatalog struct {
	tracks   map[string]recommend.Track
	byGenre  map[string][]recommend.Track
	byBucket map[string][]recommend.Track
	prefs    map[string]map[string]float64
	err      error
}

func (f *fixtureCatalog) Track(ctx context.Context, itemID string) (recommend.Track, bool) {
	tr, ok := f.tracks[itemID]
	return tr, ok
}

func (f *fixtureCatalog) TracksByGenre(ctx context.Context, genre string, limit int) ([]recommend.Track, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := f.byGenre[genre]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fixtureCatalog) TracksForBucket(ctx context.Context, bucket string, limit int) ([]recommend.Track, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := f.byBucket[bucket]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fixtureCatalog) GenrePreferences(ctx context.Context, userID string) (map[string]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.prefs[userID], nil
}
