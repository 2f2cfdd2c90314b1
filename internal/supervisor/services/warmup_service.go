// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// MatrixWarmer matches the engine's proactive matrix build.
type MatrixWarmer interface {
	WarmMatrix(ctx context.Context) error
}

// WarmupService periodically rebuilds the interaction matrix so requests
// arriving after a cache expiry do not pay the build cost. A failed warmup is
// logged and retried next tick; the request path rebuilds on demand anyway.
type WarmupService struct {
	warmer   MatrixWarmer
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewWarmupService creates the warmup loop service.
func NewWarmupService(warmer MatrixWarmer, interval time.Duration, logger zerolog.Logger) *WarmupService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &WarmupService{
		warmer:   warmer,
		interval: interval,
		logger:   logger.With().Str("service", "matrix-warmup").Logger(),
		name:     "matrix-warmup",
	}
}

// Serve implements suture.Service. It warms immediately on start, then on
// every tick until cancellation.
func (s *WarmupService) Serve(ctx context.Context) error {
	s.warm(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.warm(ctx)
		}
	}
}

func (s *WarmupService) warm(ctx context.Context) {
	start := time.Now()
	if err := s.warmer.WarmMatrix(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("matrix warmup failed, will retry next tick")
		return
	}
	s.logger.Debug().Dur("elapsed", time.Since(start)).Msg("matrix warmed")
}

// String implements fmt.Stringer.
func (s *WarmupService) String() string {
	return s.name
}
