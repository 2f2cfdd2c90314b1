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

func TestItemCFRecommendsCoRatedItems(t *testing.T) {
	// x and z are co-rated by u2 and u3; u1 rated x highly and should get z.
	m := matrixFromRatings(t, map[string]map[string]float64{
		"u1": {"x": 1.0, "y": 0.8},
		"u2": {"x": 1.0, "z": 0.8, "y": 0.6},
		"u3": {"x": 0.8, "z": 1.0, "y": 0.8},
	})

	g := NewItemCF(recommend.DefaultConfig(), zerolog.Nop())

	got, err := g.Generate(context.Background(), "u1", m, 10)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(got) != 1 || got[0].ItemID != "z" {
		t.Fatalf("got %v, want single candidate z", got)
	}
	if got[0].Algorithm != recommend.AlgorithmItemCF {
		t.Errorf("algorithm = %v, want item_cf", got[0].Algorithm)
	}
	if got[0].Confidence != 0.8 {
		t.Errorf("confidence = %v, want fixed 0.8", got[0].Confidence)
	}
	assertScoresInRange(t, got)
	assertExcludes(t, got, "x", "y")
}

func TestItemCFSkipsWeakSeeds(t *testing.T) {
	// u1's only rating is below the seed threshold; nothing to expand from.
	m := matrixFromRatings(t, map[string]map[string]float64{
		"u1": {"x": 0.2},
		"u2": {"x": 1.0, "z": 1.0, "y": 1.0},
		"u3": {"x": 1.0, "z": 1.0, "y": 0.8},
	})

	g := NewItemCF(recommend.DefaultConfig(), zerolog.Nop())

	got, err := g.Generate(context.Background(), "u1", m, 10)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v from sub-threshold seed, want none", got)
	}
}

func TestItemCFDiscardsItemAtSimilarityFloor(t *testing.T) {
	// x and z are co-rated 1.0 by four users: cosine exactly 1.0. An item
	// pair at exactly MinSimilarity is discarded.
	ratings := map[string]map[string]float64{
		"u1": {"x": 1.0},
	}
	for _, peer := range []string{"p1", "p2", "p3", "p4"} {
		ratings[peer] = map[string]float64{"x": 1.0, "z": 1.0}
	}
	m := matrixFromRatings(t, ratings)

	atFloor := recommend.DefaultConfig()
	atFloor.MinSimilarity = 1.0
	got, err := NewItemCF(atFloor, zerolog.Nop()).Generate(context.Background(), "u1", m, 10)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v from an item pair at exactly the similarity floor, want none", got)
	}

	below := recommend.DefaultConfig()
	below.MinSimilarity = 0.99
	got, err = NewItemCF(below, zerolog.Nop()).Generate(context.Background(), "u1", m, 10)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(got) != 1 || got[0].ItemID != "z" {
		t.Errorf("got %v, want candidate z from the above-floor pair", got)
	}
}

func TestItemCFUnknownUser(t *testing.T) {
	m := matrixFromRatings(t, map[string]map[string]float64{
		"u2": {"x": 1.0, "z": 1.0},
	})

	g := NewItemCF(recommend.DefaultConfig(), zerolog.Nop())

	got, err := g.Generate(context.Background(), "stranger", m, 10)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d candidates for unknown user, want 0", len(got))
	}
}
