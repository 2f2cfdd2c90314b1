// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

package config

import (
	"fmt"
	"time"

	"github.com/cadenzafm/cadenza/internal/events"
	"github.com/cadenzafm/cadenza/internal/logging"
	"github.com/cadenzafm/cadenza/internal/recommend"
)

// Config is the root application configuration.
type Config struct {
	Logging   LoggingConfig     `koanf:"logging"`
	Server    ServerConfig      `koanf:"server"`
	NATS      NATSConfig        `koanf:"nats"`
	Events    EventsConfig      `koanf:"events"`
	Recommend *recommend.Config `koanf:"recommend"`
	Warmup    WarmupConfig      `koanf:"warmup"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line in log lines.
	Caller bool `koanf:"caller"`
}

// ServerConfig controls the operational HTTP listener (metrics and health).
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// ShutdownTimeout bounds graceful listener shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// NATSConfig controls behavior event consumption from NATS JetStream.
type NATSConfig struct {
	// Enabled toggles event consumption. When disabled the service runs on
	// whatever the event store already holds (useful for tests and replays).
	Enabled bool `koanf:"enabled"`

	URL        string `koanf:"url"`
	Topic      string `koanf:"topic"`
	StreamName string `koanf:"stream_name"`

	DurableName      string        `koanf:"durable_name"`
	QueueGroup       string        `koanf:"queue_group"`
	SubscribersCount int           `koanf:"subscribers_count"`
	MaxReconnects    int           `koanf:"max_reconnects"`
	ReconnectWait    time.Duration `koanf:"reconnect_wait"`
	AckWaitTimeout   time.Duration `koanf:"ack_wait_timeout"`
	CloseTimeout     time.Duration `koanf:"close_timeout"`
	MaxDeliver       int           `koanf:"max_deliver"`
	MaxAckPending    int           `koanf:"max_ack_pending"`

	// IngestPerSecond throttles ingestion; 0 means unlimited.
	IngestPerSecond int `koanf:"ingest_per_second"`
}

// EventsConfig controls the windowed in-memory event store and the circuit
// breaker guarding reads from it.
type EventsConfig struct {
	Retention time.Duration `koanf:"retention"`
	MaxEvents int           `koanf:"max_events"`

	Breaker BreakerConfig `koanf:"breaker"`
}

// BreakerConfig controls the event source circuit breaker.
type BreakerConfig struct {
	Enabled     bool          `koanf:"enabled"`
	MaxFailures uint32        `koanf:"max_failures"`
	Interval    time.Duration `koanf:"interval"`
	Timeout     time.Duration `koanf:"timeout"`
}

// WarmupConfig controls proactive matrix builds outside the request path.
type WarmupConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Interval time.Duration `koanf:"interval"`
}

// defaultConfig returns built-in defaults, applied before file and env layers.
func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            9464,
			ShutdownTimeout: 10 * time.Second,
		},
		NATS: NATSConfig{
			Enabled:          true,
			URL:              "nats://127.0.0.1:4222",
			Topic:            "behavior.events",
			StreamName:       "",
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
		},
		Events: EventsConfig{
			Retention: 30 * 24 * time.Hour,
			MaxEvents: 1_000_000,
			Breaker: BreakerConfig{
				Enabled:     true,
				MaxFailures: 5,
				Interval:    1 * time.Minute,
				Timeout:     30 * time.Second,
			},
		},
		Recommend: recommend.DefaultConfig(),
		Warmup: WarmupConfig{
			Enabled:  true,
			Interval: 5 * time.Minute,
		},
	}
}

// Validate checks cross-section configuration invariants.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.NATS.Enabled {
		if c.NATS.URL == "" {
			return fmt.Errorf("config: nats url is required when nats is enabled")
		}
		if c.NATS.Topic == "" {
			return fmt.Errorf("config: nats topic is required when nats is enabled")
		}
	}
	if c.Events.Retention <= 0 {
		return fmt.Errorf("config: events retention must be positive, got %v", c.Events.Retention)
	}
	if c.Events.MaxEvents <= 0 {
		return fmt.Errorf("config: events max_events must be positive, got %d", c.Events.MaxEvents)
	}
	if c.Events.Retention < c.Recommend.Window {
		return fmt.Errorf("config: events retention %v must cover the recommendation window %v",
			c.Events.Retention, c.Recommend.Window)
	}
	if c.Warmup.Enabled && c.Warmup.Interval <= 0 {
		return fmt.Errorf("config: warmup interval must be positive, got %v", c.Warmup.Interval)
	}
	if err := c.Recommend.Validate(); err != nil {
		return err
	}
	return nil
}

// LoggingSettings converts to the logging package's configuration.
func (c *Config) LoggingSettings() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Logging.Level
	cfg.Format = c.Logging.Format
	cfg.Caller = c.Logging.Caller
	return cfg
}

// SubscriberSettings converts to the events subscriber configuration.
func (c *Config) SubscriberSettings() events.SubscriberConfig {
	return events.SubscriberConfig{
		URL:              c.NATS.URL,
		Topic:            c.NATS.Topic,
		StreamName:       c.NATS.StreamName,
		DurableName:      c.NATS.DurableName,
		QueueGroup:       c.NATS.QueueGroup,
		SubscribersCount: c.NATS.SubscribersCount,
		MaxReconnects:    c.NATS.MaxReconnects,
		ReconnectWait:    c.NATS.ReconnectWait,
		AckWaitTimeout:   c.NATS.AckWaitTimeout,
		CloseTimeout:     c.NATS.CloseTimeout,
		MaxDeliver:       c.NATS.MaxDeliver,
		MaxAckPending:    c.NATS.MaxAckPending,
		IngestPerSecond:  c.NATS.IngestPerSecond,
	}
}

// StoreSettings converts to the event store configuration.
func (c *Config) StoreSettings() events.StoreConfig {
	return events.StoreConfig{
		Retention: c.Events.Retention,
		MaxEvents: c.Events.MaxEvents,
	}
}

// BreakerSettings converts to the event source breaker configuration.
func (c *Config) BreakerSettings() events.BreakerConfig {
	cfg := events.DefaultBreakerConfig()
	cfg.FailureThreshold = c.Events.Breaker.MaxFailures
	cfg.Interval = c.Events.Breaker.Interval
	cfg.Timeout = c.Events.Breaker.Timeout
	return cfg
}
