// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

package events

import (
	"testing"
	"time"
)

func TestImplicitScore(t *testing.T) {
	tests := []struct {
		name   string
		kind   EventKind
		rating int
		want   float64
	}{
		{name: "like", kind: KindLike, want: 1.0},
		{name: "playlist add", kind: KindPlaylistAdd, want: 0.9},
		{name: "review with rating 5", kind: KindReviewWrite, rating: 5, want: 1.0},
		{name: "review with rating 3", kind: KindReviewWrite, rating: 3, want: 0.6},
		{name: "review with rating 1", kind: KindReviewWrite, rating: 1, want: 0.2},
		{name: "review without rating", kind: KindReviewWrite, want: 0.7},
		{name: "recommendation click", kind: KindRecommendationClick, want: 0.7},
		{name: "profile update", kind: KindProfileUpdate, want: 0.6},
		{name: "search", kind: KindSearch, want: 0.5},
		{name: "refresh", kind: KindRefresh, want: 0.4},
		{name: "session start", kind: KindSessionStart, want: 0.3},
		{name: "session end", kind: KindSessionEnd, want: 0.3},
		{name: "dislike", kind: KindDislike, want: 0.0},
		{name: "unknown", kind: KindUnknown, want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := BehaviorEvent{Kind: tt.kind, Rating: tt.rating}
			if got := e.ImplicitScore(); got != tt.want {
				t.Errorf("ImplicitScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKindRoundTrip(t *testing.T) {
	kinds := []EventKind{
		KindLike, KindDislike, KindPlaylistAdd, KindReviewWrite,
		KindRecommendationClick, KindSearch, KindProfileUpdate,
		KindRefresh, KindSessionStart, KindSessionEnd,
	}
	for _, k := range kinds {
		if got := KindFromString(k.String()); got != k {
			t.Errorf("KindFromString(%q) = %v, want %v", k.String(), got, k)
		}
	}

	if got := KindFromString("bogus"); got != KindUnknown {
		t.Errorf("KindFromString(bogus) = %v, want KindUnknown", got)
	}
}

func TestValidate(t *testing.T) {
	valid := NewEvent("user-1", "track-9", ItemTypeTrack, KindLike, time.Now())

	tests := []struct {
		name    string
		mutate  func(e *BehaviorEvent)
		wantErr bool
	}{
		{name: "valid event", mutate: func(e *BehaviorEvent) {}, wantErr: false},
		{name: "missing user", mutate: func(e *BehaviorEvent) { e.UserID = "" }, wantErr: true},
		{name: "missing item", mutate: func(e *BehaviorEvent) { e.ItemID = "" }, wantErr: true},
		{name: "bad item type", mutate: func(e *BehaviorEvent) { e.ItemType = "podcast" }, wantErr: true},
		{name: "unknown kind", mutate: func(e *BehaviorEvent) { e.Kind = KindUnknown }, wantErr: true},
		{name: "rating out of range", mutate: func(e *BehaviorEvent) { e.Rating = 6 }, wantErr: true},
		{name: "album item type", mutate: func(e *BehaviorEvent) { e.ItemType = ItemTypeAlbum }, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			err := e.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSerializerRoundTrip(t *testing.T) {
	s := NewSerializer()

	event := NewEvent("user-1", "track-9", ItemTypeTrack, KindReviewWrite, time.Now().UTC().Truncate(time.Second))
	event.Rating = 4
	event.Genre = "jazz"
	event.Artist = "Artist A"
	event.ItemTitle = "Blue Horizon"

	payload, err := s.Marshal(&event)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	got, err := s.Unmarshal(payload)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if got.EventID != event.EventID || got.Kind != event.Kind || got.Rating != event.Rating {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, event)
	}
	if got.ItemTitle != "Blue Horizon" {
		t.Errorf("ItemTitle = %q, want Blue Horizon", got.ItemTitle)
	}
}

func TestSerializerRejectsInvalid(t *testing.T) {
	s := NewSerializer()

	event := BehaviorEvent{EventID: "e1"} // missing required fields
	if _, err := s.Marshal(&event); err == nil {
		t.Error("Marshal() of invalid event should fail")
	}

	if _, err := s.Unmarshal([]byte("{not json")); err == nil {
		t.Error("Unmarshal() of malformed payload should fail")
	}
}
