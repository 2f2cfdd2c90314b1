// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

package recommend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cadenzafm/cadenza/internal/cache"
	"github.com/cadenzafm/cadenza/internal/events"
	"github.com/cadenzafm/cadenza/internal/metrics"
)

// matrixCacheKey caches one population matrix per engine.
const matrixCacheKey = "matrix:population"

// Engine orchestrates the recommendation pipeline: matrix construction,
// parallel candidate generation, ensemble merging, diversity reranking, and
// the popularity fallback.
//
// The engine is fail-soft: apart from invalid input, every internal failure
// degrades to a smaller or empty result. A generator error or timeout costs
// that strategy's candidates, never the request.
type Engine struct {
	cfg        *Config
	source     events.Source
	catalog    Catalog
	generators []Generator
	fallback   Generator
	reranker   Reranker
	cache      *cache.Cache
	logger     zerolog.Logger
}

// NewEngine assembles the pipeline. The cache backs both the population
// matrix and, when enabled, per-(user, limit) responses; its single-flight
// guarantee prevents duplicate expensive computation under concurrency.
func NewEngine(
	cfg *Config,
	source events.Source,
	catalog Catalog,
	reranker Reranker,
	fallback Generator,
	c *cache.Cache,
	logger zerolog.Logger,
	gens ...Generator,
) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	if source == nil {
		return nil, fmt.Errorf("engine: event source is required")
	}
	if reranker == nil {
		return nil, fmt.Errorf("engine: reranker is required")
	}
	if c == nil {
		return nil, fmt.Errorf("engine: cache is required")
	}
	if len(gens) == 0 {
		return nil, fmt.Errorf("engine: at least one generator is required")
	}

	return &Engine{
		cfg:        cfg,
		source:     source,
		catalog:    catalog,
		generators: gens,
		fallback:   fallback,
		reranker:   reranker,
		cache:      c,
		logger:     logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// Recommend returns up to limit diversified recommendations for the user.
//
// limit <= 0 is the only request that fails: it returns ErrInvalidLimit.
// Everything else degrades; an unknown user or an empty event window yields
// the popularity fallback or an empty list, never an error.
func (e *Engine) Recommend(ctx context.Context, userID string, limit int) (*Response, error) {
	start := time.Now()
	defer metrics.ObserveRecommendDuration(start)

	if limit <= 0 {
		metrics.RecommendRequestsTotal.WithLabelValues("invalid_input").Inc()
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLimit, limit)
	}
	if limit > e.cfg.Limits.MaxK {
		limit = e.cfg.Limits.MaxK
	}

	if !e.cfg.Cache.Enabled {
		resp, err := e.compute(ctx, userID, limit, start)
		if err != nil {
			return nil, err
		}
		e.recordOutcome(resp)
		return resp, nil
	}

	key := cache.GenerateKey("recommend", struct {
		UserID string
		Limit  int
	}{userID, limit})

	computed := false
	v, err := e.cache.GetOrCompute(ctx, key, e.cfg.Cache.TTL, func(ctx context.Context) (interface{}, error) {
		computed = true
		return e.compute(ctx, userID, limit, start)
	})
	if err != nil {
		return nil, err
	}

	resp := v.(*Response)
	if computed {
		metrics.RecommendCacheMisses.Inc()
		e.recordOutcome(resp)
		return resp, nil
	}

	metrics.RecommendCacheHits.Inc()
	metrics.RecommendRequestsTotal.WithLabelValues("ok").Inc()

	// Shallow copy so the cached entry's metadata stays pristine. Items are
	// shared read-only.
	served := *resp
	served.Metadata.CacheHit = true
	served.Metadata.LatencyMS = time.Since(start).Milliseconds()
	return &served, nil
}

// compute runs the full pipeline for one request.
func (e *Engine) compute(ctx context.Context, userID string, limit int, start time.Time) (*Response, error) {
	requestID := uuid.NewString()
	logger := e.logger.With().
		Str("request_id", requestID).
		Str("user_id", userID).
		Int("limit", limit).
		Logger()

	m, err := e.matrix(ctx)
	if err != nil {
		// Matrix unavailable means no behavioral signal at all; serve the
		// empty-list contract rather than failing the request.
		logger.Err(err).Msg("matrix unavailable, returning empty list")
		return e.emptyResponse(requestID, userID, start), nil
	}

	overfetch := limit * e.cfg.OverfetchFactor
	lists, used := e.fanOut(ctx, logger, userID, m, overfetch)

	merged := Combine(e.cfg.Weights, lists, overfetch)
	e.enrich(ctx, merged)

	items := e.reranker.Rerank(ctx, merged, limit)

	fallback := false
	if len(items) == 0 && e.fallback != nil {
		items = e.runFallback(ctx, logger, userID, m, limit)
		if len(items) > 0 {
			fallback = true
			used = []string{e.fallback.Name()}
		}
	}

	logger.Info().
		Int("candidates", len(merged)).
		Int("returned", len(items)).
		Bool("fallback", fallback).
		Strs("algorithms", used).
		Dur("elapsed", time.Since(start)).
		Msg("recommendations computed")

	return &Response{
		Items:           items,
		TotalCandidates: len(merged),
		Metadata: ResponseMetadata{
			RequestID:      requestID,
			UserID:         userID,
			AlgorithmsUsed: used,
			LatencyMS:      time.Since(start).Milliseconds(),
			Fallback:       fallback,
			Timestamp:      time.Now().UTC(),
		},
	}, nil
}

// matrix returns the cached population matrix, building it from the event
// window on miss. Concurrent requests share a single build.
func (e *Engine) matrix(ctx context.Context) (*Matrix, error) {
	v, err := e.cache.GetOrCompute(ctx, matrixCacheKey, e.cfg.MatrixTTL, func(ctx context.Context) (interface{}, error) {
		since := time.Now().Add(-e.cfg.Window)

		evts, err := e.source.RecentEvents(ctx, "", since)
		if err != nil {
			return nil, fmt.Errorf("fetch event window: %w", err)
		}

		buildStart := time.Now()
		m := BuildMatrix(evts, since, e.cfg.ItemType)
		metrics.MatrixBuildDuration.Observe(time.Since(buildStart).Seconds())
		metrics.MatrixUsers.Set(float64(m.UserCount()))
		metrics.MatrixItems.Set(float64(m.ItemCount()))

		e.logger.Debug().
			Int("events", len(evts)).
			Int("users", m.UserCount()).
			Int("items", m.ItemCount()).
			Dur("build_time", time.Since(buildStart)).
			Msg("interaction matrix built")

		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Matrix), nil
}

// fanOut runs every generator concurrently against the shared read-only
// matrix snapshot, each under its own timeout. A failed, timed-out, or
// panicking generator contributes an empty list.
func (e *Engine) fanOut(ctx context.Context, logger zerolog.Logger, userID string, m *Matrix, limit int) ([][]Candidate, []string) {
	lists := make([][]Candidate, len(e.generators))

	var wg sync.WaitGroup
	for i, g := range e.generators {
		wg.Add(1)
		go func(i int, g Generator) {
			defer wg.Done()
			lists[i] = e.runGenerator(ctx, logger, g, userID, m, limit)
		}(i, g)
	}
	wg.Wait()

	used := make([]string, 0, len(e.generators))
	for i, g := range e.generators {
		if len(lists[i]) > 0 {
			used = append(used, g.Name())
		}
	}
	return lists, used
}

// runGenerator invokes one generator with panic recovery and a bounded
// deadline.
func (e *Engine) runGenerator(ctx context.Context, logger zerolog.Logger, g Generator, userID string, m *Matrix, limit int) (out []Candidate) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			metrics.GeneratorFailures.WithLabelValues(g.Name()).Inc()
			logger.Error().
				Str("generator", g.Name()).
				Interface("panic", r).
				Msg("generator panicked, substituting empty list")
			out = nil
		}
		metrics.ObserveGenerator(g.Name(), start, len(out))
	}()

	gctx, cancel := context.WithTimeout(ctx, e.cfg.Limits.GeneratorTimeout)
	defer cancel()

	candidates, err := g.Generate(gctx, userID, m, limit)
	if err != nil {
		metrics.GeneratorFailures.WithLabelValues(g.Name()).Inc()
		logger.Warn().
			Err(err).
			Str("generator", g.Name()).
			Msg("generator failed, substituting empty list")
		return nil
	}
	return candidates
}

// runFallback produces the popularity fallback list.
func (e *Engine) runFallback(ctx context.Context, logger zerolog.Logger, userID string, m *Matrix, limit int) []Candidate {
	items, err := e.fallback.Generate(ctx, userID, m, limit)
	if err != nil {
		logger.Warn().Err(err).Msg("popularity fallback failed, returning empty list")
		return nil
	}
	return items
}

// enrich fills missing catalog metadata so the diversity constraints can see
// titles, artists and genres for CF-sourced candidates.
func (e *Engine) enrich(ctx context.Context, candidates []Candidate) {
	if e.catalog == nil {
		return
	}
	for i := range candidates {
		if candidates[i].Title != "" && candidates[i].Artist != "" && candidates[i].Genre != "" {
			continue
		}
		t, ok := e.catalog.Track(ctx, candidates[i].ItemID)
		if !ok {
			continue
		}
		if candidates[i].Title == "" {
			candidates[i].Title = t.Title
		}
		if candidates[i].Artist == "" {
			candidates[i].Artist = t.Artist
		}
		if candidates[i].Genre == "" {
			candidates[i].Genre = t.Genre
		}
	}
}

func (e *Engine) emptyResponse(requestID, userID string, start time.Time) *Response {
	return &Response{
		Items: []Candidate{},
		Metadata: ResponseMetadata{
			RequestID: requestID,
			UserID:    userID,
			LatencyMS: time.Since(start).Milliseconds(),
			Timestamp: time.Now().UTC(),
		},
	}
}

func (e *Engine) recordOutcome(resp *Response) {
	switch {
	case resp.Metadata.Fallback:
		metrics.RecommendRequestsTotal.WithLabelValues("fallback").Inc()
	case len(resp.Items) == 0:
		metrics.RecommendRequestsTotal.WithLabelValues("empty").Inc()
	default:
		metrics.RecommendRequestsTotal.WithLabelValues("ok").Inc()
	}
}

// WarmMatrix forces a matrix build outside the request path so the first
// request after startup or TTL expiry does not pay the build cost.
func (e *Engine) WarmMatrix(ctx context.Context) error {
	_, err := e.matrix(ctx)
	return err
}

// Config returns the engine configuration.
func (e *Engine) Config() *Config {
	return e.cfg
}

// MetricsSnapshot is a point-in-time view of engine state for diagnostics.
type MetricsSnapshot struct {
	Generators    []string    `json:"generators"`
	Cache         cache.Stats `json:"cache"`
	MatrixUsers   int         `json:"matrix_users"`
	MatrixItems   int         `json:"matrix_items"`
	MatrixBuiltAt time.Time   `json:"matrix_built_at"`
}

// Metrics reports the current engine state. Matrix fields are zero when no
// matrix has been built yet.
func (e *Engine) Metrics() MetricsSnapshot {
	s := MetricsSnapshot{
		Generators: make([]string, 0, len(e.generators)),
		Cache:      e.cache.GetStats(),
	}
	for _, g := range e.generators {
		s.Generators = append(s.Generators, g.Name())
	}
	if v, ok := e.cache.Get(matrixCacheKey); ok {
		m := v.(*Matrix)
		s.MatrixUsers = m.UserCount()
		s.MatrixItems = m.ItemCount()
		s.MatrixBuiltAt = m.BuiltAt()
	}
	return s
}
