// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

package services

import (
	"context"
	"errors"
	"fmt"
)

// EventConsumer matches the consume loop of events.Consumer without
// importing it, keeping this package free of transport dependencies.
type EventConsumer interface {
	Run(ctx context.Context) error
}

// ConsumerService wraps the behavior event consumer as a supervised service.
// The consumer blocks in Run until context cancellation; any other return is
// a failure that suture restarts with backoff.
type ConsumerService struct {
	consumer EventConsumer
	name     string
}

// NewConsumerService creates the consumer service wrapper.
func NewConsumerService(consumer EventConsumer) *ConsumerService {
	return &ConsumerService{
		consumer: consumer,
		name:     "event-consumer",
	}
}

// Serve implements suture.Service.
func (s *ConsumerService) Serve(ctx context.Context) error {
	err := s.consumer.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("event consumer: %w", err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer; suture uses it to identify the service.
func (s *ConsumerService) String() string {
	return s.name
}
