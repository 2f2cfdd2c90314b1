// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

package recommend

import (
	"sort"
	"time"

	"github.com/cadenzafm/cadenza/internal/events"
)

// Matrix is a sparse user-item interaction matrix built from a window of
// behavioral events. Entries are implicit ratings in [0, 1]. A Matrix is
// immutable after construction and safe for concurrent reads.
type Matrix struct {
	// ratings maps userID -> itemID -> implicit rating.
	ratings map[string]map[string]float64

	// itemUsers is the inverse index: itemID -> set of userIDs.
	itemUsers map[string]map[string]struct{}

	builtAt time.Time
	since   time.Time
}

// Exponential blend factors for repeated interactions with the same item.
// The newer signal dominates without erasing history.
const (
	blendOld = 0.7
	blendNew = 0.3
)

// BuildMatrix folds a window of behavioral events into an interaction matrix.
// Events are processed in timestamp order; repeated (user, item) interactions
// blend as blendOld*previous + blendNew*incoming. Events with an empty user
// or item ID are skipped, as are events whose item type differs from itemType
// (an empty itemType disables the filter). Keeping the matrix to one item
// type stops playlists and albums from surfacing as recommendable tracks.
func BuildMatrix(evts []events.BehaviorEvent, since time.Time, itemType string) *Matrix {
	ordered := make([]events.BehaviorEvent, len(evts))
	copy(ordered, evts)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	m := &Matrix{
		ratings:   make(map[string]map[string]float64),
		itemUsers: make(map[string]map[string]struct{}),
		builtAt:   time.Now(),
		since:     since,
	}

	for i := range ordered {
		e := &ordered[i]
		if e.UserID == "" || e.ItemID == "" {
			continue
		}
		if itemType != "" && e.ItemType != itemType {
			continue
		}

		score := e.ImplicitScore()

		row, ok := m.ratings[e.UserID]
		if !ok {
			row = make(map[string]float64)
			m.ratings[e.UserID] = row
		}

		if prev, seen := row[e.ItemID]; seen {
			row[e.ItemID] = blendOld*prev + blendNew*score
		} else {
			row[e.ItemID] = score
		}

		users, ok := m.itemUsers[e.ItemID]
		if !ok {
			users = make(map[string]struct{})
			m.itemUsers[e.ItemID] = users
		}
		users[e.UserID] = struct{}{}
	}

	return m
}

// Rating returns the implicit rating for (user, item), or 0 if absent.
func (m *Matrix) Rating(userID, itemID string) float64 {
	return m.ratings[userID][itemID]
}

// HasUser reports whether the user has any interactions in the window.
func (m *Matrix) HasUser(userID string) bool {
	return len(m.ratings[userID]) > 0
}

// UserRatings returns the user's item -> rating row. The returned map is
// shared; callers must not mutate it.
func (m *Matrix) UserRatings(userID string) map[string]float64 {
	return m.ratings[userID]
}

// UsersForItem returns the set of users who interacted with the item.
// The returned map is shared; callers must not mutate it.
func (m *Matrix) UsersForItem(itemID string) map[string]struct{} {
	return m.itemUsers[itemID]
}

// Users returns all user IDs present in the matrix.
func (m *Matrix) Users() []string {
	out := make([]string, 0, len(m.ratings))
	for u := range m.ratings {
		out = append(out, u)
	}
	return out
}

// Items returns all item IDs present in the matrix.
func (m *Matrix) Items() []string {
	out := make([]string, 0, len(m.itemUsers))
	for i := range m.itemUsers {
		out = append(out, i)
	}
	return out
}

// UserCount returns the number of distinct users.
func (m *Matrix) UserCount() int { return len(m.ratings) }

// ItemCount returns the number of distinct items.
func (m *Matrix) ItemCount() int { return len(m.itemUsers) }

// InteractionCount returns the item interaction count per item, used by the
// popularity fallback.
func (m *Matrix) InteractionCount(itemID string) int {
	return len(m.itemUsers[itemID])
}

// BuiltAt returns when the matrix snapshot was constructed.
func (m *Matrix) BuiltAt() time.Time { return m.builtAt }

// Since returns the start of the event window the matrix covers.
func (m *Matrix) Since() time.Time { return m.since }
