// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

package generators

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/cadenzafm/cadenza/internal/recommend"
)

func TestPopularityRanksByListeners(t *testing.T) {
	// hit has 3 listeners, mid has 2, niche has 1.
	m := matrixFromRatings(t, map[string]map[string]float64{
		"u1": {"hit": 1.0, "mid": 1.0},
		"u2": {"hit": 1.0, "mid": 1.0},
		"u3": {"hit": 1.0, "niche": 1.0},
	})

	g := NewPopularity(zerolog.Nop())

	got, err := g.Generate(context.Background(), "newcomer", m, 10)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d candidates, want 3", len(got))
	}
	if got[0].ItemID != "hit" {
		t.Errorf("top item = %s, want hit", got[0].ItemID)
	}
	if got[0].Score != 1.0 {
		t.Errorf("top score = %v, want 1.0 relative to most popular", got[0].Score)
	}
	if got[len(got)-1].ItemID != "niche" {
		t.Errorf("last item = %s, want niche", got[len(got)-1].ItemID)
	}
	for _, c := range got {
		if c.Algorithm != recommend.AlgorithmPopularity {
			t.Errorf("algorithm = %v, want popularity", c.Algorithm)
		}
	}
	assertScoresInRange(t, got)
}

func TestPopularityExcludesSeen(t *testing.T) {
	m := matrixFromRatings(t, map[string]map[string]float64{
		"u1": {"hit": 1.0},
		"u2": {"hit": 1.0, "fresh": 1.0},
	})

	g := NewPopularity(zerolog.Nop())

	got, err := g.Generate(context.Background(), "u1", m, 10)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	assertExcludes(t, got, "hit")
	if len(got) != 1 || got[0].ItemID != "fresh" {
		t.Errorf("got %v, want [fresh]", got)
	}
}

func TestPopularityEmptyMatrix(t *testing.T) {
	m := matrixFromRatings(t, nil)
	g := NewPopularity(zerolog.Nop())

	got, err := g.Generate(context.Background(), "u1", m, 10)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v from empty matrix, want none", got)
	}
}
