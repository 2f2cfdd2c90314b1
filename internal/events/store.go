// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

package events

import (
	"context"
	"sync"
	"time"
)

// StoreConfig holds configuration for the windowed event store.
type StoreConfig struct {
	// Retention is how long events are kept.
	// Default: 30 days (matches the default matrix computation window).
	Retention time.Duration

	// MaxEvents bounds memory; the oldest events are dropped first.
	// Default: 1_000_000.
	MaxEvents int
}

// DefaultStoreConfig returns production defaults.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Retention: 30 * 24 * time.Hour,
		MaxEvents: 1_000_000,
	}
}

// Store is a windowed in-memory event store fed by the NATS consumer.
// It implements Source for the recommendation pipeline.
// Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	events []BehaviorEvent
	config StoreConfig
}

// NewStore creates an event store.
func NewStore(cfg StoreConfig) *Store {
	if cfg.Retention <= 0 {
		cfg.Retention = 30 * 24 * time.Hour
	}
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = 1_000_000
	}
	return &Store{
		events: make([]BehaviorEvent, 0, 1024),
		config: cfg,
	}
}

// Append records an event. Events arriving out of order are accepted;
// retention pruning uses the window cutoff, not strict ordering.
func (s *Store) Append(event BehaviorEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, event)

	if len(s.events) > s.config.MaxEvents {
		s.pruneLocked()
	}
}

// Len returns the number of stored events.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// RecentEvents returns events newer than since, optionally filtered to one user.
// An empty userID yields the full population window.
// The returned slice is a copy owned by the caller.
func (s *Store) RecentEvents(ctx context.Context, userID string, since time.Time) ([]BehaviorEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]BehaviorEvent, 0, len(s.events))
	for i := range s.events {
		e := &s.events[i]
		if e.Timestamp.Before(since) {
			continue
		}
		if userID != "" && e.UserID != userID {
			continue
		}
		out = append(out, *e)
	}

	return out, nil
}

// Prune drops events older than the retention window.
func (s *Store) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pruneLocked()
}

// pruneLocked removes expired events and, if still over capacity, the oldest
// remainder. Must be called with mu held.
func (s *Store) pruneLocked() int {
	cutoff := time.Now().Add(-s.config.Retention)

	kept := s.events[:0]
	for i := range s.events {
		if !s.events[i].Timestamp.Before(cutoff) {
			kept = append(kept, s.events[i])
		}
	}
	dropped := len(s.events) - len(kept)
	s.events = kept

	if excess := len(s.events) - s.config.MaxEvents; excess > 0 {
		s.events = append(s.events[:0], s.events[excess:]...)
		dropped += excess
	}

	return dropped
}

// Ensure Store implements the source interface.
var _ Source = (*Store)(nil)
