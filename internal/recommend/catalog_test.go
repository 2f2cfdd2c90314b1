// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

package recommend

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cadenzafm/cadenza/internal/events"
)

func taggedEvent(userID, itemID, title, artist, genre string, kind events.EventKind, ts time.Time) events.BehaviorEvent {
	e := events.NewEvent(userID, itemID, events.ItemTypeTrack, kind, ts)
	e.ItemTitle = title
	e.Artist = artist
	e.Genre = genre
	return e
}

func TestEventCatalogTracks(t *testing.T) {
	now := time.Now()
	src := &sliceSource{events: []events.BehaviorEvent{
		taggedEvent("u1", "t1", "Blue Horizon", "Artist A", "jazz", events.KindLike, now),
		taggedEvent("u2", "t2", "Red Sky", "Artist B", "rock", events.KindLike, now),
	}}

	cat := NewEventCatalog(src, time.Hour, time.Minute, events.ItemTypeTrack)

	track, ok := cat.Track(context.Background(), "t1")
	if !ok {
		t.Fatal("Track(t1) not found")
	}
	if track.Title != "Blue Horizon" || track.Artist != "Artist A" || track.Genre != "jazz" {
		t.Errorf("Track(t1) = %+v, metadata mismatch", track)
	}

	if _, ok := cat.Track(context.Background(), "ghost"); ok {
		t.Error("Track(ghost) should not be found")
	}
}

func TestEventCatalogTracksByGenre(t *testing.T) {
	now := time.Now()
	src := &sliceSource{events: []events.BehaviorEvent{
		// t1 played twice, t2 once: t1 ranks first within jazz.
		taggedEvent("u1", "t1", "One", "A", "jazz", events.KindLike, now),
		taggedEvent("u2", "t1", "One", "A", "jazz", events.KindLike, now),
		taggedEvent("u1", "t2", "Two", "B", "jazz", events.KindLike, now),
		taggedEvent("u1", "t3", "Three", "C", "rock", events.KindLike, now),
	}}

	cat := NewEventCatalog(src, time.Hour, time.Minute, events.ItemTypeTrack)

	tracks, err := cat.TracksByGenre(context.Background(), "jazz", 10)
	if err != nil {
		t.Fatalf("TracksByGenre() error = %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("got %d jazz tracks, want 2", len(tracks))
	}
	if tracks[0].ID != "t1" {
		t.Errorf("top jazz track = %s, want most-played t1", tracks[0].ID)
	}

	limited, _ := cat.TracksByGenre(context.Background(), "jazz", 1)
	if len(limited) != 1 {
		t.Errorf("limit not applied: got %d tracks", len(limited))
	}
}

func TestEventCatalogGenrePreferences(t *testing.T) {
	now := time.Now()
	src := &sliceSource{events: []events.BehaviorEvent{
		taggedEvent("u1", "t1", "", "", "jazz", events.KindLike, now),   // 1.0
		taggedEvent("u1", "t2", "", "", "jazz", events.KindLike, now),   // 1.0
		taggedEvent("u1", "t3", "", "", "rock", events.KindSearch, now), // 0.5
	}}

	cat := NewEventCatalog(src, time.Hour, time.Minute, events.ItemTypeTrack)

	prefs, err := cat.GenrePreferences(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GenrePreferences() error = %v", err)
	}
	if prefs["jazz"] != 1.0 {
		t.Errorf("jazz preference = %v, want 1.0 (strongest genre)", prefs["jazz"])
	}
	if prefs["rock"] != 0.25 {
		t.Errorf("rock preference = %v, want 0.25 (0.5 of 2.0)", prefs["rock"])
	}

	none, err := cat.GenrePreferences(context.Background(), "stranger")
	if err != nil {
		t.Fatalf("GenrePreferences(stranger) error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("unknown user preferences = %v, want empty", none)
	}
}

func TestEventCatalogFiltersItemType(t *testing.T) {
	now := time.Now()
	playlist := events.NewEvent("u1", "mix-1", events.ItemTypePlaylist, events.KindLike, now)
	playlist.ItemTitle = "Morning Mix"
	playlist.Genre = "jazz"
	src := &sliceSource{events: []events.BehaviorEvent{
		taggedEvent("u1", "t1", "Blue Horizon", "Artist A", "jazz", events.KindLike, now),
		playlist,
	}}

	cat := NewEventCatalog(src, time.Hour, time.Minute, events.ItemTypeTrack)

	if _, ok := cat.Track(context.Background(), "mix-1"); ok {
		t.Error("playlist surfaced as a catalog track")
	}
	jazz, err := cat.TracksByGenre(context.Background(), "jazz", 10)
	if err != nil {
		t.Fatalf("TracksByGenre() error = %v", err)
	}
	if len(jazz) != 1 || jazz[0].ID != "t1" {
		t.Errorf("jazz tracks = %v, want only the track t1", jazz)
	}
}

func TestEventCatalogConcurrentRebuildFetchesOnce(t *testing.T) {
	now := time.Now()
	src := &slowCountingSource{events: []events.BehaviorEvent{
		taggedEvent("u1", "t1", "One", "A", "jazz", events.KindLike, now),
	}}

	cat := NewEventCatalog(src, time.Hour, time.Minute, events.ItemTypeTrack)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := cat.Track(context.Background(), "t1"); !ok {
				t.Error("Track(t1) not found")
			}
		}()
	}
	wg.Wait()

	if got := src.fetches.Load(); got != 1 {
		t.Errorf("source fetched %d times under concurrency, want 1", got)
	}
}

// slowCountingSource counts fetches and holds each one long enough for
// concurrent callers to pile up.
type slowCountingSource struct {
	events  []events.BehaviorEvent
	fetches atomic.Int64
}

func (s *slowCountingSource) RecentEvents(ctx context.Context, userID string, since time.Time) ([]events.BehaviorEvent, error) {
	s.fetches.Add(1)
	time.Sleep(20 * time.Millisecond)
	return s.events, nil
}

func TestEventCatalogBuckets(t *testing.T) {
	// 19:00 falls in the evening bucket.
	evening := time.Date(2026, 8, 1, 19, 0, 0, 0, time.Local)
	src := &sliceSource{events: []events.BehaviorEvent{
		taggedEvent("u1", "t1", "Night Drive", "A", "synthwave", events.KindSessionStart, evening),
	}}

	cat := NewEventCatalog(src, 365*24*time.Hour, time.Minute, events.ItemTypeTrack)

	tracks, err := cat.TracksForBucket(context.Background(), "evening", 5)
	if err != nil {
		t.Fatalf("TracksForBucket() error = %v", err)
	}
	if len(tracks) != 1 || tracks[0].ID != "t1" {
		t.Errorf("evening tracks = %v, want [t1]", tracks)
	}

	empty, _ := cat.TracksForBucket(context.Background(), "lunch", 5)
	if len(empty) != 0 {
		t.Errorf("lunch tracks = %v, want none", empty)
	}
}
