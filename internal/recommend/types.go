// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

package recommend

import (
	"context"
	"errors"
	"time"
)

// Algorithm identifies the strategy that produced a candidate.
// The set is closed; ensemble and diversity logic switch exhaustively on it.
type Algorithm int

const (
	// AlgorithmUserCF is user-based collaborative filtering.
	AlgorithmUserCF Algorithm = iota
	// AlgorithmItemCF is item-based collaborative filtering.
	AlgorithmItemCF
	// AlgorithmContent is content-based filtering over genre preferences.
	AlgorithmContent
	// AlgorithmContextual is time-of-day contextual scoring.
	AlgorithmContextual
	// AlgorithmDeep is the pluggable model scorer.
	AlgorithmDeep
	// AlgorithmEnsemble marks candidates merged from multiple strategies.
	AlgorithmEnsemble
	// AlgorithmPopularity marks fallback candidates ranked by interaction count.
	AlgorithmPopularity
)

// String returns the wire-format algorithm name.
func (a Algorithm) String() string {
	switch a {
	case AlgorithmUserCF:
		return "user_cf"
	case AlgorithmItemCF:
		return "item_cf"
	case AlgorithmContent:
		return "content_based"
	case AlgorithmContextual:
		return "contextual"
	case AlgorithmDeep:
		return "deep"
	case AlgorithmEnsemble:
		return "ensemble"
	case AlgorithmPopularity:
		return "popularity"
	default:
		return "unknown"
	}
}

// Candidate is a scored recommendation candidate. Candidates are treated as
// immutable values; combination stages build new instances instead of
// mutating the generators' output.
type Candidate struct {
	// ItemID is the recommended music item.
	ItemID string `json:"item_id"`

	// Title, Artist and Genre carry catalog metadata used by diversity control.
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Genre  string `json:"genre,omitempty"`

	// Score is the relevance score in [0, 1] after normalization.
	Score float64 `json:"score"`

	// Confidence is the producing strategy's confidence in [0, 1].
	Confidence float64 `json:"confidence"`

	// Algorithm is the producing strategy, or AlgorithmEnsemble after merging.
	Algorithm Algorithm `json:"algorithm"`

	// Sources is the per-strategy weighted score breakdown after merging.
	Sources map[string]float64 `json:"sources,omitempty"`

	// Reason is a human-readable explanation for presentation layers.
	Reason string `json:"reason,omitempty"`
}

// Response is an ordered recommendation list with diagnostic metadata.
type Response struct {
	// Items is the diversified, ordered recommendation list.
	Items []Candidate `json:"items"`

	// TotalCandidates is the merged candidate count before diversification.
	TotalCandidates int `json:"total_candidates"`

	// Metadata contains timing and diagnostic information.
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata carries request diagnostics alongside the item list.
type ResponseMetadata struct {
	// RequestID is the unique request identifier.
	RequestID string `json:"request_id"`

	// UserID is the user the recommendations are for.
	UserID string `json:"user_id"`

	// AlgorithmsUsed lists the strategies that contributed candidates.
	AlgorithmsUsed []string `json:"algorithms_used"`

	// LatencyMS is the total recommendation latency in milliseconds.
	LatencyMS int64 `json:"latency_ms"`

	// CacheHit indicates the result was served from the response cache.
	CacheHit bool `json:"cache_hit"`

	// Fallback indicates the popularity fallback produced the list.
	Fallback bool `json:"fallback,omitempty"`

	// Timestamp is when the response was generated.
	Timestamp time.Time `json:"timestamp"`
}

// Track is catalog metadata for a music item.
type Track struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Artist          string `json:"artist"`
	Genre           string `json:"genre"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
}

// Catalog provides item metadata and tag-based lookup. Implemented by the
// persistence layer; fixture implementations back the tests.
type Catalog interface {
	// Track returns metadata for one item.
	Track(ctx context.Context, itemID string) (Track, bool)

	// TracksByGenre returns up to limit items tagged with the genre.
	TracksByGenre(ctx context.Context, genre string, limit int) ([]Track, error)

	// TracksForBucket returns up to limit items suited to a context bucket
	// (morning, work, lunch, afternoon, evening, night).
	TracksForBucket(ctx context.Context, bucket string, limit int) ([]Track, error)
}

// PreferenceProvider supplies aggregated user preference vectors.
type PreferenceProvider interface {
	// GenrePreferences returns genre -> preference strength in [0, 1].
	GenrePreferences(ctx context.Context, userID string) (map[string]float64, error)
}

// Scorer scores items for a user. The default implementation is a seeded
// pseudo-random stand-in; a trained model can be substituted without touching
// the rest of the pipeline.
type Scorer interface {
	// Name identifies the scorer for logging.
	Name() string

	// Score returns itemID -> score in [0, 1] for the given items.
	Score(ctx context.Context, userID string, itemIDs []string) (map[string]float64, error)
}

// Generator produces a bounded candidate list for one strategy.
// Implementations return at most limit candidates sorted by descending score.
// A generator error never aborts the request; the engine substitutes an
// empty list and continues with the remaining strategies.
type Generator interface {
	// Name returns the generator identifier for logs and metrics.
	Name() string

	// Algorithm returns the strategy tag applied to produced candidates.
	Algorithm() Algorithm

	// Generate produces candidates for the user from the matrix snapshot.
	Generate(ctx context.Context, userID string, m *Matrix, limit int) ([]Candidate, error)
}

// Reranker reorders a merged candidate list for a secondary objective such as
// diversity.
type Reranker interface {
	// Name returns the reranker identifier.
	Name() string

	// Rerank returns up to k items selected from the relevance-sorted input.
	Rerank(ctx context.Context, items []Candidate, k int) []Candidate
}

// ErrInvalidLimit is returned when the requested limit is not positive.
// It is the only error Recommend propagates to callers; every internal
// failure degrades to a smaller or empty result instead.
var ErrInvalidLimit = errors.New("recommend: limit must be positive")
