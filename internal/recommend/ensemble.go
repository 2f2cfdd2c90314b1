// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

package recommend

import "sort"

// Combine merges per-strategy candidate lists into one ranked list.
//
// Every candidate's score is multiplied by its strategy's ensemble weight.
// When an item appears in more than one list the weighted scores are summed
// and the candidate is relabeled AlgorithmEnsemble. Weights are discount
// factors, not a probability simplex; merged scores are not renormalized and
// may exceed any single input score. The result is sorted by descending
// score and truncated to max entries (0 means unbounded).
func Combine(weights Weights, lists [][]Candidate, max int) []Candidate {
	merged := make(map[string]Candidate)

	for _, list := range lists {
		for _, c := range list {
			w := weights.For(c.Algorithm)
			if w == 0 {
				continue
			}
			weighted := w * c.Score

			existing, ok := merged[c.ItemID]
			if !ok {
				nc := c
				nc.Score = weighted
				nc.Sources = map[string]float64{c.Algorithm.String(): weighted}
				merged[c.ItemID] = nc
				continue
			}

			existing.Score += weighted
			existing.Algorithm = AlgorithmEnsemble
			existing.Sources[c.Algorithm.String()] += weighted
			if c.Confidence > existing.Confidence {
				existing.Confidence = c.Confidence
			}
			// Prefer whichever contributor carries catalog metadata.
			if existing.Title == "" {
				existing.Title = c.Title
			}
			if existing.Artist == "" {
				existing.Artist = c.Artist
			}
			if existing.Genre == "" {
				existing.Genre = c.Genre
			}
			if existing.Reason == "" {
				existing.Reason = c.Reason
			}
			merged[c.ItemID] = existing
		}
	}

	out := make([]Candidate, 0, len(merged))
	for _, c := range merged {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ItemID < out[j].ItemID
	})
	if max > 0 && len(out) > max {
		out = out[:max]
	}

	return out
}
