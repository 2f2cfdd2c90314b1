// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

package events

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	"golang.org/x/time/rate"
)

// SubscriberConfig holds NATS JetStream subscriber configuration.
type SubscriberConfig struct {
	// URL is the NATS server URL.
	URL string

	// Topic is the behavior event subject.
	// Default: "behavior.events".
	Topic string

	// StreamName binds the subscriber to an existing stream when set.
	StreamName string

	// DurableName is the durable consumer prefix.
	DurableName string

	// QueueGroup enables load balancing across instances.
	QueueGroup string

	// SubscribersCount is the number of parallel subscribers.
	SubscribersCount int

	// MaxReconnects bounds reconnect attempts.
	MaxReconnects int

	// ReconnectWait is the delay between reconnect attempts.
	ReconnectWait time.Duration

	// AckWaitTimeout is how long JetStream waits for an ack before redelivery.
	AckWaitTimeout time.Duration

	// CloseTimeout bounds graceful shutdown.
	CloseTimeout time.Duration

	// MaxDeliver bounds redelivery attempts per message.
	MaxDeliver int

	// MaxAckPending bounds unacked in-flight messages.
	MaxAckPending int

	// IngestPerSecond throttles event ingestion. Zero means unlimited.
	IngestPerSecond int
}

// DefaultSubscriberConfig returns production defaults.
func DefaultSubscriberConfig() SubscriberConfig {
	return SubscriberConfig{
		URL:              "nats://127.0.0.1:4222",
		Topic:            "behavior.events",
		DurableName:      "cadenza-recommender",
		QueueGroup:       "recommenders",
		SubscribersCount: 4,
		MaxReconnects:    -1,
		ReconnectWait:    2 * time.Second,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     30 * time.Second,
		MaxDeliver:       5,
		MaxAckPending:    1000,
		IngestPerSecond:  0,
	}
}

// Subscriber wraps a Watermill NATS subscriber with configuration.
// It provides durable JetStream consumption of behavior events.
type Subscriber struct {
	subscriber message.Subscriber
	config     SubscriberConfig
	logger     watermill.LoggerAdapter
}

// NewSubscriber creates a durable JetStream subscriber.
func NewSubscriber(cfg SubscriberConfig, logger watermill.LoggerAdapter) (*Subscriber, error) {
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("Subscriber disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("Subscriber reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}

	subOpts := []natsgo.SubOpt{
		natsgo.MaxDeliver(cfg.MaxDeliver),
		natsgo.MaxAckPending(cfg.MaxAckPending),
		natsgo.AckWait(cfg.AckWaitTimeout),
		natsgo.DeliverNew(),
	}

	// Bind to an existing stream when configured; AutoProvision cannot create
	// streams for wildcard subjects.
	autoProvision := true
	if cfg.StreamName != "" {
		subOpts = append(subOpts, natsgo.BindStream(cfg.StreamName))
		autoProvision = false
	}

	wmConfig := wmNats.SubscriberConfig{
		URL:              cfg.URL,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: cfg.SubscribersCount,
		AckWaitTimeout:   cfg.AckWaitTimeout,
		CloseTimeout:     cfg.CloseTimeout,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:         false,
			AutoProvision:    autoProvision,
			AckAsync:         false,
			SubscribeOptions: subOpts,
			DurablePrefix:    cfg.DurableName,
		},
	}

	sub, err := wmNats.NewSubscriber(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill subscriber: %w", err)
	}

	return &Subscriber{
		subscriber: sub,
		config:     cfg,
		logger:     logger,
	}, nil
}

// Subscribe returns a channel of messages for the configured topic.
func (s *Subscriber) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return s.subscriber.Subscribe(ctx, s.config.Topic)
}

// Close gracefully shuts down the subscriber.
func (s *Subscriber) Close() error {
	return s.subscriber.Close()
}

// ConsumeStats reports the outcome counts of a consume loop.
type ConsumeStats struct {
	Accepted int64
	Rejected int64
}

// Consumer pumps behavior events from the subscriber into the store.
type Consumer struct {
	subscriber *Subscriber
	store      *Store
	serializer *Serializer
	limiter    *rate.Limiter
	logger     watermill.LoggerAdapter

	accepted atomic.Int64
	rejected atomic.Int64

	// OnAccept and OnReject are optional observation hooks (metrics).
	OnAccept func(e *BehaviorEvent)
	OnReject func(reason string)
}

// NewConsumer creates a consumer feeding the given store.
func NewConsumer(sub *Subscriber, store *Store) *Consumer {
	var limiter *rate.Limiter
	if n := sub.config.IngestPerSecond; n > 0 {
		limiter = rate.NewLimiter(rate.Limit(n), n)
	}

	return &Consumer{
		subscriber: sub,
		store:      store,
		serializer: NewSerializer(),
		limiter:    limiter,
		logger:     sub.logger,
	}
}

// Run consumes events until context cancellation. Malformed or invalid
// payloads are acked and dropped; they would never succeed on redelivery.
func (c *Consumer) Run(ctx context.Context) error {
	messages, err := c.subscriber.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", c.subscriber.config.Topic, err)
	}

	defer func() {
		stats := c.Stats()
		c.logger.Info("Consumer stopped", watermill.LogFields{
			"accepted": stats.Accepted,
			"rejected": stats.Rejected,
		})
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			c.process(ctx, msg)
		}
	}
}

// Stats returns the accepted and rejected counts so far.
func (c *Consumer) Stats() ConsumeStats {
	return ConsumeStats{
		Accepted: c.accepted.Load(),
		Rejected: c.rejected.Load(),
	}
}

func (c *Consumer) process(ctx context.Context, msg *message.Message) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			msg.Nack()
			return
		}
	}

	event, err := c.serializer.Unmarshal(msg.Payload)
	if err != nil {
		c.logger.Error("Dropping malformed event", err, watermill.LogFields{
			"message_uuid": msg.UUID,
		})
		c.reject("malformed")
		msg.Ack()
		return
	}

	if err := event.Validate(); err != nil {
		c.logger.Error("Dropping invalid event", err, watermill.LogFields{
			"message_uuid": msg.UUID,
			"event_id":     event.EventID,
		})
		c.reject("invalid")
		msg.Ack()
		return
	}

	c.store.Append(*event)
	c.accepted.Add(1)
	if c.OnAccept != nil {
		c.OnAccept(event)
	}
	msg.Ack()
}

func (c *Consumer) reject(reason string) {
	c.rejected.Add(1)
	if c.OnReject != nil {
		c.OnReject(reason)
	}
}
