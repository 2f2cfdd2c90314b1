// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

package recommend

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/cadenzafm/cadenza/internal/events"
)

// EventCatalog derives catalog metadata and preference vectors from the
// behavior event stream itself. Events carry item genre and artist tags, so
// the service can run without an external catalog database; a dedicated
// catalog service can replace this by implementing Catalog.
//
// The derived snapshot is rebuilt lazily when older than refresh.
type EventCatalog struct {
	source   events.Source
	window   time.Duration
	refresh  time.Duration
	itemType string

	// sf collapses concurrent rebuilds after expiry into one fetch.
	sf singleflight.Group

	mu      sync.RWMutex
	builtAt time.Time
	tracks  map[string]Track
	byGenre map[string][]string

	// byBucket maps a time-of-day bucket to item IDs ranked by how often
	// they were played during that bucket's hours.
	byBucket map[string][]string

	// genreScores accumulates per-user implicit scores by genre.
	genreScores map[string]map[string]float64
}

// NewEventCatalog creates an event-derived catalog over the given window.
// itemType restricts the catalog to one item category; empty keeps every
// event.
func NewEventCatalog(source events.Source, window, refresh time.Duration, itemType string) *EventCatalog {
	if refresh <= 0 {
		refresh = 5 * time.Minute
	}
	return &EventCatalog{
		source:   source,
		window:   window,
		refresh:  refresh,
		itemType: itemType,
	}
}

// Track implements Catalog.
func (c *EventCatalog) Track(ctx context.Context, itemID string) (Track, bool) {
	if err := c.ensure(ctx); err != nil {
		return Track{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tracks[itemID]
	return t, ok
}

// TracksByGenre implements Catalog.
func (c *EventCatalog) TracksByGenre(ctx context.Context, genre string, limit int) ([]Track, error) {
	if err := c.ensure(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.collect(c.byGenre[genre], limit), nil
}

// TracksForBucket implements Catalog.
func (c *EventCatalog) TracksForBucket(ctx context.Context, bucket string, limit int) ([]Track, error) {
	if err := c.ensure(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.collect(c.byBucket[bucket], limit), nil
}

// GenrePreferences implements PreferenceProvider. Preferences are the user's
// accumulated implicit scores per genre, normalized by the strongest genre.
func (c *EventCatalog) GenrePreferences(ctx context.Context, userID string) (map[string]float64, error) {
	if err := c.ensure(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	scores := c.genreScores[userID]
	if len(scores) == 0 {
		return nil, nil
	}

	maxScore := 0.0
	for _, s := range scores {
		if s > maxScore {
			maxScore = s
		}
	}
	if maxScore == 0 {
		return nil, nil
	}

	out := make(map[string]float64, len(scores))
	for genre, s := range scores {
		out[genre] = s / maxScore
	}
	return out, nil
}

func (c *EventCatalog) collect(ids []string, limit int) []Track {
	out := make([]Track, 0, limit)
	for _, id := range ids {
		if limit > 0 && len(out) >= limit {
			break
		}
		if t, ok := c.tracks[id]; ok {
			out = append(out, t)
		}
	}
	return out
}

// ensure rebuilds the snapshot when stale. Concurrent callers after expiry
// share a single rebuild; latecomers piggyback on the in-flight fetch.
func (c *EventCatalog) ensure(ctx context.Context) error {
	if c.isFresh() {
		return nil
	}
	_, err, _ := c.sf.Do("rebuild", func() (interface{}, error) {
		if c.isFresh() {
			return nil, nil
		}
		return nil, c.rebuild(ctx)
	})
	return err
}

func (c *EventCatalog) isFresh() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Since(c.builtAt) < c.refresh && c.tracks != nil
}

func (c *EventCatalog) rebuild(ctx context.Context) error {
	since := time.Now().Add(-c.window)
	evts, err := c.source.RecentEvents(ctx, "", since)
	if err != nil {
		return err
	}

	tracks := make(map[string]Track)
	genreItems := make(map[string]map[string]int)
	bucketItems := make(map[string]map[string]int)
	genreScores := make(map[string]map[string]float64)

	for i := range evts {
		e := &evts[i]
		if e.ItemID == "" {
			continue
		}
		if c.itemType != "" && e.ItemType != c.itemType {
			continue
		}

		t := tracks[e.ItemID]
		t.ID = e.ItemID
		if t.Genre == "" {
			t.Genre = e.Genre
		}
		if t.Artist == "" {
			t.Artist = e.Artist
		}
		if t.Title == "" {
			t.Title = e.ItemTitle
		}
		tracks[e.ItemID] = t

		if e.Genre != "" {
			if genreItems[e.Genre] == nil {
				genreItems[e.Genre] = make(map[string]int)
			}
			genreItems[e.Genre][e.ItemID]++
		}

		bucket := bucketForHour(e.Timestamp.Hour())
		if bucketItems[bucket] == nil {
			bucketItems[bucket] = make(map[string]int)
		}
		bucketItems[bucket][e.ItemID]++

		if e.UserID != "" && e.Genre != "" {
			if genreScores[e.UserID] == nil {
				genreScores[e.UserID] = make(map[string]float64)
			}
			genreScores[e.UserID][e.Genre] += e.ImplicitScore()
		}
	}

	c.mu.Lock()
	c.tracks = tracks
	c.byGenre = rankIndex(genreItems)
	c.byBucket = rankIndex(bucketItems)
	c.genreScores = genreScores
	c.builtAt = time.Now()
	c.mu.Unlock()

	return nil
}

// rankIndex orders each key's items by descending play count with item ID as
// a deterministic tiebreak.
func rankIndex(counts map[string]map[string]int) map[string][]string {
	out := make(map[string][]string, len(counts))
	for key, items := range counts {
		ids := make([]string, 0, len(items))
		for id := range items {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			if items[ids[i]] != items[ids[j]] {
				return items[ids[i]] > items[ids[j]]
			}
			return ids[i] < ids[j]
		})
		out[key] = ids
	}
	return out
}

// bucketForHour mirrors the contextual generator's bucket boundaries.
func bucketForHour(hour int) string {
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

var (
	_ Catalog            = (*EventCatalog)(nil)
	_ PreferenceProvider = (*EventCatalog)(nil)
)
