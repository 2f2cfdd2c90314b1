// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

package reranking

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/cadenzafm/cadenza/internal/recommend"
)

func testMMR() *MMR {
	return NewMMR(recommend.DefaultConfig().Diversity, zerolog.Nop())
}

func TestMMRFirstItemIsTopRelevance(t *testing.T) {
	items := []recommend.Candidate{
		{ItemID: "best", Score: 0.9, Title: "Alpha", Artist: "A", Genre: "g1", Algorithm: recommend.AlgorithmContent},
		{ItemID: "second", Score: 0.7, Title: "Beta", Artist: "B", Genre: "g2", Algorithm: recommend.AlgorithmUserCF},
		{ItemID: "third", Score: 0.5, Title: "Gamma", Artist: "C", Genre: "g3", Algorithm: recommend.AlgorithmDeep},
	}

	got := testMMR().Rerank(context.Background(), items, 3)
	if len(got) == 0 || got[0].ItemID != "best" {
		t.Errorf("first output = %v, want top-relevance item best", got)
	}
}

func TestMMRArtistCap(t *testing.T) {
	// Five tracks by artist Q with the highest scores, plus others below.
	items := []recommend.Candidate{
		{ItemID: "q1", Score: 0.95, Title: "Q One", Artist: "Q", Genre: "g1", Algorithm: recommend.AlgorithmContent},
		{ItemID: "q2", Score: 0.90, Title: "Q Two", Artist: "Q", Genre: "g2", Algorithm: recommend.AlgorithmUserCF},
		{ItemID: "q3", Score: 0.85, Title: "Q Three", Artist: "Q", Genre: "g3", Algorithm: recommend.AlgorithmItemCF},
		{ItemID: "q4", Score: 0.80, Title: "Q Four", Artist: "Q", Genre: "g4", Algorithm: recommend.AlgorithmDeep},
		{ItemID: "q5", Score: 0.75, Title: "Q Five", Artist: "Q", Genre: "g5", Algorithm: recommend.AlgorithmContextual},
		{ItemID: "x1", Score: 0.40, Title: "X One", Artist: "X", Genre: "g6", Algorithm: recommend.AlgorithmContent},
		{ItemID: "y1", Score: 0.35, Title: "Y One", Artist: "Y", Genre: "g7", Algorithm: recommend.AlgorithmUserCF},
	}

	got := testMMR().Rerank(context.Background(), items, 6)

	qCount := 0
	for _, c := range got {
		if c.Artist == "Q" {
			qCount++
		}
	}
	if qCount != 2 {
		t.Errorf("artist Q appears %d times, want exactly the cap of 2", qCount)
	}
	// The two kept Q items are the top-scored ones.
	if got[0].ItemID != "q1" {
		t.Errorf("first item = %s, want q1", got[0].ItemID)
	}
}

func TestMMRGenreCap(t *testing.T) {
	// k=3 gives a genre cap of max(1, 3/3) = 1.
	items := []recommend.Candidate{
		{ItemID: "a", Score: 0.9, Title: "Aa", Artist: "A", Genre: "pop", Algorithm: recommend.AlgorithmContent},
		{ItemID: "b", Score: 0.8, Title: "Bb", Artist: "B", Genre: "pop", Algorithm: recommend.AlgorithmUserCF},
		{ItemID: "c", Score: 0.7, Title: "Cc", Artist: "C", Genre: "pop", Algorithm: recommend.AlgorithmItemCF},
		{ItemID: "d", Score: 0.6, Title: "Dd", Artist: "D", Genre: "rock", Algorithm: recommend.AlgorithmDeep},
	}

	got := testMMR().Rerank(context.Background(), items, 3)

	counts := make(map[string]int)
	for _, c := range got {
		counts[c.Genre]++
	}
	if counts["pop"] > 1 {
		t.Errorf("pop appears %d times, want at most genre cap 1", counts["pop"])
	}
}

func TestMMRTitleDeduplication(t *testing.T) {
	items := []recommend.Candidate{
		{ItemID: "orig", Score: 0.9, Title: "Midnight Dreams", Artist: "A", Genre: "g1", Algorithm: recommend.AlgorithmContent},
		{ItemID: "dupe", Score: 0.85, Title: "Midnight Dream", Artist: "B", Genre: "g2", Algorithm: recommend.AlgorithmUserCF},
		{ItemID: "other", Score: 0.5, Title: "Ocean Road", Artist: "C", Genre: "g3", Algorithm: recommend.AlgorithmDeep},
	}

	got := testMMR().Rerank(context.Background(), items, 3)

	for _, c := range got {
		if c.ItemID == "dupe" {
			t.Error("near-duplicate title was not suppressed")
		}
	}
	// No surviving pair may meet the similarity threshold.
	for i := range got {
		for j := i + 1; j < len(got); j++ {
			if sim := TitleSimilarity(got[i].Title, got[j].Title); sim >= 0.8 {
				t.Errorf("output titles %q and %q have similarity %v >= 0.8",
					got[i].Title, got[j].Title, sim)
			}
		}
	}
}

func TestMMRShortPoolNotPadded(t *testing.T) {
	items := []recommend.Candidate{
		{ItemID: "only", Score: 0.9, Title: "Solo", Artist: "A", Genre: "g1", Algorithm: recommend.AlgorithmContent},
	}

	got := testMMR().Rerank(context.Background(), items, 10)
	if len(got) != 1 {
		t.Errorf("got %d items from 1 candidate, output must not be padded", len(got))
	}
}

func TestMMREmptyInput(t *testing.T) {
	if got := testMMR().Rerank(context.Background(), nil, 5); len(got) != 0 {
		t.Errorf("got %v from empty input, want none", got)
	}
	if got := testMMR().Rerank(context.Background(), []recommend.Candidate{{ItemID: "a"}}, 0); len(got) != 0 {
		t.Errorf("got %v for k=0, want none", got)
	}
}

func TestMMRSkippedCandidateNotRetried(t *testing.T) {
	// With artistCap=2 and a large k, every artist-Q candidate past the first
	// two is rejected once and never reappears, even though the pool empties.
	items := make([]recommend.Candidate, 0, 8)
	for i := 0; i < 6; i++ {
		items = append(items, recommend.Candidate{
			ItemID: fmt.Sprintf("q%d", i), Score: 0.9 - float64(i)*0.05,
			Title: fmt.Sprintf("Q Track %d", i), Artist: "Q", Genre: fmt.Sprintf("g%d", i),
			Algorithm: recommend.AlgorithmContent,
		})
	}
	items = append(items,
		recommend.Candidate{ItemID: "x", Score: 0.2, Title: "X Side", Artist: "X", Genre: "gx", Algorithm: recommend.AlgorithmUserCF},
	)

	got := testMMR().Rerank(context.Background(), items, 7)

	// 2 from Q plus x: rejected Q items stay rejected.
	if len(got) != 3 {
		t.Errorf("got %d items, want 3 (2 capped Q + 1 other)", len(got))
	}
}

func TestMMRDiversityAcrossAlgorithms(t *testing.T) {
	// With equal scores, MMR should interleave algorithms rather than pick
	// three from the same strategy in a row.
	items := []recommend.Candidate{
		{ItemID: "c1", Score: 0.80, Title: "C One", Artist: "A", Genre: "g1", Algorithm: recommend.AlgorithmContent},
		{ItemID: "c2", Score: 0.79, Title: "C Two", Artist: "B", Genre: "g2", Algorithm: recommend.AlgorithmContent},
		{ItemID: "k1", Score: 0.78, Title: "K One", Artist: "C", Genre: "g3", Algorithm: recommend.AlgorithmUserCF},
	}

	got := testMMR().Rerank(context.Background(), items, 2)
	if len(got) != 2 {
		t.Fatalf("got %d items, want 2", len(got))
	}
	if got[0].ItemID != "c1" {
		t.Errorf("first = %s, want c1", got[0].ItemID)
	}
	// MMR for c2: 0.7*0.79 - 0.3*0.8 = 0.313; for k1: 0.7*0.78 - 0.3*0.1 = 0.516.
	if got[1].ItemID != "k1" {
		t.Errorf("second = %s, want cross-algorithm k1 over same-algorithm c2", got[1].ItemID)
	}
}
