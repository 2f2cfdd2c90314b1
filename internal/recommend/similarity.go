// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

package recommend

import "math"

// minCommon is the minimum overlap below which similarity is defined as 0.
// A single shared interaction always yields perfect cosine on a
// one-dimensional vector, which is noise, not signal.
const minCommon = 2

// UserSimilarity computes cosine similarity between two users over the items
// both have rated. Vectors are restricted to the intersection; items rated by
// only one user contribute nothing. Returns 0 when fewer than minCommon items
// overlap.
func UserSimilarity(m *Matrix, userA, userB string) float64 {
	rowA := m.UserRatings(userA)
	rowB := m.UserRatings(userB)
	if len(rowA) == 0 || len(rowB) == 0 {
		return 0
	}

	// Iterate the smaller row.
	if len(rowB) < len(rowA) {
		rowA, rowB = rowB, rowA
	}

	var dot, normA, normB float64
	common := 0
	for item, a := range rowA {
		b, ok := rowB[item]
		if !ok {
			continue
		}
		common++
		dot += a * b
		normA += a * a
		normB += b * b
	}

	if common < minCommon || normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// ItemSimilarity computes cosine similarity between two items over the users
// who rated both. Returns 0 when fewer than minCommon users overlap.
func ItemSimilarity(m *Matrix, itemA, itemB string) float64 {
	usersA := m.UsersForItem(itemA)
	usersB := m.UsersForItem(itemB)
	if len(usersA) == 0 || len(usersB) == 0 {
		return 0
	}

	if len(usersB) < len(usersA) {
		usersA, usersB = usersB, usersA
		itemA, itemB = itemB, itemA
	}

	var dot, normA, normB float64
	common := 0
	for user := range usersA {
		if _, ok := usersB[user]; !ok {
			continue
		}
		a := m.Rating(user, itemA)
		b := m.Rating(user, itemB)
		common++
		dot += a * b
		normA += a * a
		normB += b * b
	}

	if common < minCommon || normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
