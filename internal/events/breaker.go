// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

package events

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
)

// BreakerConfig holds circuit breaker configuration for event fetches.
type BreakerConfig struct {
	// Name identifies the breaker in logs.
	Name string

	// MaxRequests is the number of probe requests allowed in half-open state.
	MaxRequests uint32

	// Interval is the cyclic period for clearing counts in closed state.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration

	// FailureThreshold is the consecutive failure count that trips the breaker.
	FailureThreshold uint32
}

// DefaultBreakerConfig returns production defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "event-source",
		MaxRequests:      1,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// ResilientSource wraps a Source with a circuit breaker.
// When the underlying source fails repeatedly or the breaker is open, fetches
// degrade to an empty event slice so the recommendation pipeline sees "no
// data" rather than an error.
type ResilientSource struct {
	inner   Source
	breaker *gobreaker.CircuitBreaker[[]BehaviorEvent]
	logger  zerolog.Logger
}

// NewResilientSource wraps src with circuit breaker protection.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewResilientSource(src Source, cfg BreakerConfig, logger zerolog.Logger) *ResilientSource {
	log := logger.With().Str("component", "event-source-breaker").Logger()

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	}

	return &ResilientSource{
		inner:   src,
		breaker: gobreaker.NewCircuitBreaker[[]BehaviorEvent](settings),
		logger:  log,
	}
}

// RecentEvents fetches events through the breaker. Failures are logged and
// degrade to an empty slice, never an error.
func (r *ResilientSource) RecentEvents(ctx context.Context, userID string, since time.Time) ([]BehaviorEvent, error) {
	evs, err := r.breaker.Execute(func() ([]BehaviorEvent, error) {
		return r.inner.RecentEvents(ctx, userID, since)
	})
	if err != nil {
		r.logger.Warn().
			Err(err).
			Str("user_id", userID).
			Msg("event fetch degraded to empty window")
		return []BehaviorEvent{}, nil
	}

	return evs, nil
}

// State returns the breaker state for monitoring.
func (r *ResilientSource) State() string {
	return r.breaker.State().String()
}

// Ensure ResilientSource implements the source interface.
var _ Source = (*ResilientSource)(nil)
