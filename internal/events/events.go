// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

package events

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// SchemaVersion is the current event schema version.
// Increment this when making breaking changes to BehaviorEvent.
const SchemaVersion = 1

// EventKind classifies user actions for implicit feedback scoring.
type EventKind int

const (
	// KindUnknown is the zero value for unrecognized kinds.
	KindUnknown EventKind = iota
	// KindLike indicates the user liked a track.
	KindLike
	// KindDislike indicates the user disliked a track.
	KindDislike
	// KindPlaylistAdd indicates the user added a track to a playlist.
	KindPlaylistAdd
	// KindReviewWrite indicates the user wrote a review, optionally with a rating.
	KindReviewWrite
	// KindRecommendationClick indicates the user clicked a recommended track.
	KindRecommendationClick
	// KindSearch indicates the track surfaced through a search interaction.
	KindSearch
	// KindProfileUpdate indicates the user referenced the track in a profile update.
	KindProfileUpdate
	// KindRefresh indicates the user refreshed a feed containing the track.
	KindRefresh
	// KindSessionStart indicates a listening session started on the track.
	KindSessionStart
	// KindSessionEnd indicates a listening session ended on the track.
	KindSessionEnd
)

// String returns a human-readable name for the event kind.
func (k EventKind) String() string {
	switch k {
	case KindLike:
		return "like"
	case KindDislike:
		return "dislike"
	case KindPlaylistAdd:
		return "playlist_add"
	case KindReviewWrite:
		return "review_write"
	case KindRecommendationClick:
		return "recommendation_click"
	case KindSearch:
		return "search"
	case KindProfileUpdate:
		return "profile_update"
	case KindRefresh:
		return "refresh"
	case KindSessionStart:
		return "session_start"
	case KindSessionEnd:
		return "session_end"
	default:
		return "unknown"
	}
}

// KindFromString parses a wire-format kind name.
// Unrecognized names map to KindUnknown.
func KindFromString(s string) EventKind {
	switch s {
	case "like":
		return KindLike
	case "dislike":
		return KindDislike
	case "playlist_add":
		return KindPlaylistAdd
	case "review_write":
		return KindReviewWrite
	case "recommendation_click":
		return KindRecommendationClick
	case "search":
		return KindSearch
	case "profile_update":
		return KindProfileUpdate
	case "refresh":
		return KindRefresh
	case "session_start":
		return KindSessionStart
	case "session_end":
		return KindSessionEnd
	default:
		return KindUnknown
	}
}

// ItemType values accepted on the wire.
const (
	ItemTypeTrack    = "track"
	ItemTypeAlbum    = "album"
	ItemTypePlaylist = "playlist"
)

// BehaviorEvent represents a single observed user action on a music item.
// Events are immutable once recorded.
type BehaviorEvent struct {
	// SchemaVersion tracks the event format version (default: 1).
	SchemaVersion int `json:"schema_version,omitempty"`

	// EventID uniquely identifies the event.
	EventID string `json:"event_id" validate:"required"`

	// UserID is the acting user.
	UserID string `json:"user_id" validate:"required"`

	// ItemID is the music item the action targets.
	ItemID string `json:"item_id" validate:"required"`

	// ItemType is the item category (track, album, playlist).
	ItemType string `json:"item_type" validate:"required,oneof=track album playlist"`

	// Kind classifies the action.
	Kind EventKind `json:"kind" validate:"gt=0"`

	// Timestamp is when the action occurred.
	Timestamp time.Time `json:"timestamp" validate:"required"`

	// ItemTitle is the item's display title, when known. Feeds near-duplicate
	// title suppression during diversification.
	ItemTitle string `json:"item_title,omitempty"`

	// Genre is the item's primary genre, when known.
	Genre string `json:"genre,omitempty"`

	// Artist is the item's primary artist, when known.
	Artist string `json:"artist,omitempty"`

	// Rating is an explicit 1-5 rating attached to review events. Zero means absent.
	Rating int `json:"rating,omitempty" validate:"gte=0,lte=5"`

	// DurationSeconds is the listening duration attached to session events.
	DurationSeconds int `json:"duration_seconds,omitempty" validate:"gte=0"`
}

// validate is the shared validator instance. validator.Validate caches struct
// metadata and is safe for concurrent use.
var validate = validator.New()

// Validate checks the event against its struct constraints.
func (e *BehaviorEvent) Validate() error {
	return validate.Struct(e)
}

// ImplicitScore derives a preference strength in [0, 1] from the event kind.
// Review events with an explicit rating use rating/5; unrated reviews fall
// back to 0.7.
func (e *BehaviorEvent) ImplicitScore() float64 {
	switch e.Kind {
	case KindLike:
		return 1.0
	case KindPlaylistAdd:
		return 0.9
	case KindReviewWrite:
		if e.Rating >= 1 && e.Rating <= 5 {
			return float64(e.Rating) / 5.0
		}
		return 0.7
	case KindRecommendationClick:
		return 0.7
	case KindProfileUpdate:
		return 0.6
	case KindSearch:
		return 0.5
	case KindRefresh:
		return 0.4
	case KindSessionStart, KindSessionEnd:
		return 0.3
	case KindDislike:
		return 0.0
	default:
		return 0.0
	}
}

// NewEvent constructs a BehaviorEvent with a generated ID and current schema version.
func NewEvent(userID, itemID, itemType string, kind EventKind, ts time.Time) BehaviorEvent {
	return BehaviorEvent{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.NewString(),
		UserID:        userID,
		ItemID:        itemID,
		ItemType:      itemType,
		Kind:          kind,
		Timestamp:     ts,
	}
}

// Source supplies behavioral events to the recommendation pipeline.
// An empty userID requests the full population window (batch matrix builds).
type Source interface {
	RecentEvents(ctx context.Context, userID string, since time.Time) ([]BehaviorEvent, error)
}
