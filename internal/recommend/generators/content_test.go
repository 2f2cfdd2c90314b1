// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

package generators

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/cadenzafm/cadenza/internal/recommend"
)

func TestContentBasedPreferredGenres(t *testing.T) {
	catalog := &fixtureCatalog{
		byGenre: map[string][]recommend.Track{
			"jazz": {
				{ID: "j1", Title: "One", Artist: "A", Genre: "jazz"},
				{ID: "j2", Title: "Two", Artist: "B", Genre: "jazz"},
			},
			"rock": {
				{ID: "r1", Title: "Loud", Artist: "C", Genre: "rock"},
			},
		},
		prefs: map[string]map[string]float64{
			// rock at exactly 0.5 must be filtered (strictly greater than).
			"u1": {"jazz": 0.9, "rock": 0.5},
		},
	}

	m := matrixFromRatings(t, map[string]map[string]float64{
		"u1": {"j1": 1.0, "other": 1.0},
		"u2": {"j1": 1.0, "other": 1.0},
	})

	g := NewContentBased(catalog, catalog, zerolog.Nop())

	got, err := g.Generate(context.Background(), "u1", m, 10)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(got) != 1 || got[0].ItemID != "j2" {
		t.Fatalf("got %v, want only unseen jazz track j2", got)
	}
	if got[0].Score != 0.9 {
		t.Errorf("score = %v, want preference strength 0.9", got[0].Score)
	}
	if got[0].Confidence != 0.75 {
		t.Errorf("confidence = %v, want 0.75", got[0].Confidence)
	}
	if got[0].Genre != "jazz" || got[0].Artist != "B" {
		t.Errorf("metadata not carried: %+v", got[0])
	}
	assertExcludes(t, got, "j1")
}

func TestContentBasedNoPreferences(t *testing.T) {
	catalog := &fixtureCatalog{prefs: map[string]map[string]float64{}}
	m := matrixFromRatings(t, nil)

	g := NewContentBased(catalog, catalog, zerolog.Nop())

	got, err := g.Generate(context.Background(), "u1", m, 10)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v without preferences, want none", got)
	}
}

func TestContentBasedProviderError(t *testing.T) {
	catalog := &fixtureCatalog{err: errors.New("prefs down")}
	m := matrixFromRatings(t, nil)

	g := NewContentBased(catalog, catalog, zerolog.Nop())

	if _, err := g.Generate(context.Background(), "u1", m, 10); err == nil {
		t.Error("Generate() should surface provider errors to the orchestrator")
	}
}
