// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

package recommend

import (
	"fmt"
	"time"

	"github.com/cadenzafm/cadenza/internal/events"
)

// Weights holds the per-family ensemble weights. The weights express relative
// emphasis and are intentionally not normalized to sum to 1; merged scores
// may exceed any individual input score.
type Weights struct {
	// Content weights content-based candidates.
	Content float64 `koanf:"content"`

	// Collaborative weights both user-based and item-based CF candidates.
	Collaborative float64 `koanf:"collaborative"`

	// Deep weights model-scored candidates.
	Deep float64 `koanf:"deep"`

	// Contextual weights time-of-day candidates.
	Contextual float64 `koanf:"contextual"`
}

// For returns the ensemble weight for a strategy.
func (w Weights) For(a Algorithm) float64 {
	switch a {
	case AlgorithmUserCF, AlgorithmItemCF:
		return w.Collaborative
	case AlgorithmContent:
		return w.Content
	case AlgorithmDeep:
		return w.Deep
	case AlgorithmContextual:
		return w.Contextual
	default:
		return 0
	}
}

// DiversityConfig controls MMR reranking and hard diversity constraints.
type DiversityConfig struct {
	// MMRLambda trades relevance against diversity: score =
	// lambda*relevance - (1-lambda)*maxSimilarityToSelected.
	MMRLambda float64 `koanf:"mmr_lambda"`

	// SameAlgorithmSimilarity is the pairwise similarity assumed between two
	// candidates produced by the same strategy.
	SameAlgorithmSimilarity float64 `koanf:"same_algorithm_similarity"`

	// BaselineSimilarity is the pairwise similarity assumed otherwise.
	BaselineSimilarity float64 `koanf:"baseline_similarity"`

	// TitleSimilarityThreshold rejects a candidate whose normalized title
	// edit similarity to any selected item meets or exceeds this value.
	TitleSimilarityThreshold float64 `koanf:"title_similarity_threshold"`

	// ArtistCap limits items per artist in the final list.
	ArtistCap int `koanf:"artist_cap"`

	// GenreCapDivisor sets the per-genre cap to max(1, k/GenreCapDivisor).
	GenreCapDivisor int `koanf:"genre_cap_divisor"`
}

// LimitsConfig bounds request sizes and generator execution.
type LimitsConfig struct {
	// DefaultK is the list size used when the caller does not specify one.
	DefaultK int `koanf:"default_k"`

	// MaxK caps the requested list size.
	MaxK int `koanf:"max_k"`

	// GeneratorTimeout bounds each generator invocation.
	GeneratorTimeout time.Duration `koanf:"generator_timeout"`
}

// CacheConfig controls the response cache.
type CacheConfig struct {
	// Enabled toggles response caching.
	Enabled bool `koanf:"enabled"`

	// TTL is how long a cached response stays fresh.
	TTL time.Duration `koanf:"ttl"`
}

// Config holds the full recommendation pipeline configuration.
type Config struct {
	// Weights are the ensemble combination weights.
	Weights Weights `koanf:"weights"`

	// Window bounds how far back behavioral events are considered when
	// building the interaction matrix.
	Window time.Duration `koanf:"window"`

	// ItemType restricts the interaction matrix and catalog to one item
	// category so only that category is recommendable. Empty disables the
	// filter.
	ItemType string `koanf:"item_type"`

	// NormalizationDivisor maps raw CF scores into [0, 1] via
	// min(1, max(0, raw/NormalizationDivisor)).
	NormalizationDivisor float64 `koanf:"normalization_divisor"`

	// MinSimilarity discards neighbor pairs whose similarity is at or below
	// this value.
	MinSimilarity float64 `koanf:"min_similarity"`

	// MaxSimilarUsers bounds the user-CF neighborhood.
	MaxSimilarUsers int `koanf:"max_similar_users"`

	// MaxSimilarItems bounds the per-seed item-CF neighborhood.
	MaxSimilarItems int `koanf:"max_similar_items"`

	// SeedRatingMin is the minimum rating for an item to seed item-CF.
	SeedRatingMin float64 `koanf:"seed_rating_min"`

	// OverfetchFactor multiplies the requested limit for the merged pool
	// handed to diversification.
	OverfetchFactor int `koanf:"overfetch_factor"`

	// Diversity controls the MMR reranking stage.
	Diversity DiversityConfig `koanf:"diversity"`

	// Limits bounds request sizes and generator execution.
	Limits LimitsConfig `koanf:"limits"`

	// Cache controls the response cache.
	Cache CacheConfig `koanf:"cache"`

	// MatrixTTL is how long a built interaction matrix is reused.
	MatrixTTL time.Duration `koanf:"matrix_ttl"`

	// Seed seeds the deterministic model-scorer stand-in.
	Seed int64 `koanf:"seed"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights: Weights{
			Content:       0.4,
			Collaborative: 0.3,
			Deep:          0.2,
			Contextual:    0.1,
		},
		Window:               30 * 24 * time.Hour,
		ItemType:             events.ItemTypeTrack,
		NormalizationDivisor: 10.0,
		MinSimilarity:        0.1,
		MaxSimilarUsers:      50,
		MaxSimilarItems:      20,
		SeedRatingMin:        0.5,
		OverfetchFactor:      2,
		Diversity: DiversityConfig{
			MMRLambda:                0.7,
			SameAlgorithmSimilarity:  0.8,
			BaselineSimilarity:       0.1,
			TitleSimilarityThreshold: 0.8,
			ArtistCap:                2,
			GenreCapDivisor:          3,
		},
		Limits: LimitsConfig{
			DefaultK:         20,
			MaxK:             100,
			GeneratorTimeout: 2 * time.Second,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     5 * time.Minute,
		},
		MatrixTTL: 10 * time.Minute,
		Seed:      42,
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Weights.Content < 0 || c.Weights.Collaborative < 0 || c.Weights.Deep < 0 || c.Weights.Contextual < 0 {
		return fmt.Errorf("recommend: ensemble weights must be non-negative")
	}
	if c.Weights.Content+c.Weights.Collaborative+c.Weights.Deep+c.Weights.Contextual == 0 {
		return fmt.Errorf("recommend: at least one ensemble weight must be positive")
	}
	if c.Window <= 0 {
		return fmt.Errorf("recommend: window must be positive, got %v", c.Window)
	}
	switch c.ItemType {
	case "", events.ItemTypeTrack, events.ItemTypeAlbum, events.ItemTypePlaylist:
	default:
		return fmt.Errorf("recommend: unknown item type %q", c.ItemType)
	}
	if c.NormalizationDivisor <= 0 {
		return fmt.Errorf("recommend: normalization divisor must be positive, got %v", c.NormalizationDivisor)
	}
	if c.MinSimilarity < 0 || c.MinSimilarity > 1 {
		return fmt.Errorf("recommend: min similarity must be in [0, 1], got %v", c.MinSimilarity)
	}
	if c.MaxSimilarUsers <= 0 {
		return fmt.Errorf("recommend: max similar users must be positive, got %d", c.MaxSimilarUsers)
	}
	if c.MaxSimilarItems <= 0 {
		return fmt.Errorf("recommend: max similar items must be positive, got %d", c.MaxSimilarItems)
	}
	if c.OverfetchFactor < 1 {
		return fmt.Errorf("recommend: overfetch factor must be at least 1, got %d", c.OverfetchFactor)
	}
	if c.Diversity.MMRLambda < 0 || c.Diversity.MMRLambda > 1 {
		return fmt.Errorf("recommend: mmr lambda must be in [0, 1], got %v", c.Diversity.MMRLambda)
	}
	if c.Diversity.TitleSimilarityThreshold <= 0 || c.Diversity.TitleSimilarityThreshold > 1 {
		return fmt.Errorf("recommend: title similarity threshold must be in (0, 1], got %v", c.Diversity.TitleSimilarityThreshold)
	}
	if c.Diversity.ArtistCap < 1 {
		return fmt.Errorf("recommend: artist cap must be at least 1, got %d", c.Diversity.ArtistCap)
	}
	if c.Diversity.GenreCapDivisor < 1 {
		return fmt.Errorf("recommend: genre cap divisor must be at least 1, got %d", c.Diversity.GenreCapDivisor)
	}
	if c.Limits.DefaultK <= 0 {
		return fmt.Errorf("recommend: default k must be positive, got %d", c.Limits.DefaultK)
	}
	if c.Limits.MaxK < c.Limits.DefaultK {
		return fmt.Errorf("recommend: max k %d must be at least default k %d", c.Limits.MaxK, c.Limits.DefaultK)
	}
	if c.Limits.GeneratorTimeout <= 0 {
		return fmt.Errorf("recommend: generator timeout must be positive, got %v", c.Limits.GeneratorTimeout)
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
