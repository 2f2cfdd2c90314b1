// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

// Package main is the entry point for the Cadenza recommendation service.
//
// Cadenza fuses several independently computed candidate strategies
// (collaborative filtering, content similarity, contextual signals, and a
// pluggable model scorer) into one ranked, diversity-constrained
// recommendation list per user.
//
// # Startup Order
//
//  1. Configuration: layered Koanf v2 loading (defaults, YAML file, env)
//  2. Logging: global zerolog configuration
//  3. Event store: windowed in-memory store behind a circuit breaker
//  4. NATS consumer: durable JetStream subscription for behavior events
//  5. Recommendation engine: generators, ensemble combiner, MMR reranker
//  6. Supervisor tree: consumer, matrix warmup, and metrics listener
//
// # Configuration
//
// Environment variables are prefixed with CADENZA_ and use a double
// underscore as the section separator:
//
//	export CADENZA_NATS__URL=nats://nats:4222
//	export CADENZA_RECOMMEND__WEIGHTS__CONTENT=0.4
//	export CADENZA_LOGGING__LEVEL=debug
//	./cadenza
//
// A YAML config file is read from config.yaml, /etc/cadenza/config.yaml, or
// the path in CADENZA_CONFIG.
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the consumer stops pulling
// events, the metrics listener drains in-flight requests, and the supervisor
// tree reports any service that failed to stop in time.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/cadenzafm/cadenza/internal/cache"
	"github.com/cadenzafm/cadenza/internal/config"
	"github.com/cadenzafm/cadenza/internal/events"
	"github.com/cadenzafm/cadenza/internal/logging"
	"github.com/cadenzafm/cadenza/internal/metrics"
	"github.com/cadenzafm/cadenza/internal/recommend"
	"github.com/cadenzafm/cadenza/internal/recommend/generators"
	"github.com/cadenzafm/cadenza/internal/recommend/reranking"
	"github.com/cadenzafm/cadenza/internal/supervisor"
	"github.com/cadenzafm/cadenza/internal/supervisor/services"
)

func main() {
	if err := run(); err != nil {
		logging.Err(err).Msg("cadenza exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(cfg.LoggingSettings())
	logger := logging.Logger()
	logger.Info().
		Str("nats_url", cfg.NATS.URL).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Int("metrics_port", cfg.Server.Port).
		Msg("cadenza starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Event store and resilient read path.
	store := events.NewStore(cfg.StoreSettings())
	var source events.Source = store
	if cfg.Events.Breaker.Enabled {
		source = events.NewResilientSource(store, cfg.BreakerSettings(), logger)
	}

	// Shared cache for the population matrix and response entries.
	appCache := cache.New(cfg.Recommend.Cache.TTL)
	defer appCache.Close()

	// Event-derived catalog doubles as the preference provider until a
	// dedicated catalog service exists.
	catalog := recommend.NewEventCatalog(source, cfg.Recommend.Window, cfg.Warmup.Interval, cfg.Recommend.ItemType)

	engine, err := buildEngine(cfg, source, catalog, appCache)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	// Supervision tree: ingest layer (consumer, warmup) + ops layer (metrics).
	slogger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	tree := supervisor.NewTree(slogger, supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	var consumer *events.Consumer
	if cfg.NATS.Enabled {
		consumer, err = buildConsumer(cfg, store)
		if err != nil {
			return fmt.Errorf("build consumer: %w", err)
		}
		tree.AddIngestService(services.NewConsumerService(consumer))
	}

	if cfg.Warmup.Enabled {
		tree.AddIngestService(services.NewWarmupService(engine, cfg.Warmup.Interval, logger))
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	tree.AddOpsService(services.NewMetricsService(addr, cfg.Server.ShutdownTimeout, logger,
		func() (string, bool) {
			// The store must have begun filling before recommendations mean
			// anything; an empty store is still "ready" when NATS is off.
			if cfg.NATS.Enabled && store.Len() == 0 {
				return "event-store", false
			}
			return "event-store", true
		},
	))

	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}

	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, svc := range report {
			logger.Warn().Str("service", fmt.Sprintf("%v", svc.Service)).Msg("service did not stop in time")
		}
	}

	logger.Info().Msg("cadenza stopped")
	return nil
}

// buildEngine assembles the recommendation pipeline from configuration.
func buildEngine(cfg *config.Config, source events.Source, catalog *recommend.EventCatalog, appCache *cache.Cache) (*recommend.Engine, error) {
	logger := logging.Logger()
	rcfg := cfg.Recommend

	scorer := generators.NewPseudoScorer(rcfg.Seed)
	gens := []recommend.Generator{
		generators.NewUserCF(rcfg, logger),
		generators.NewItemCF(rcfg, logger),
		generators.NewContentBased(catalog, catalog, logger),
		generators.NewContextual(catalog, logger),
		generators.NewDeep(scorer, logger),
	}

	return recommend.NewEngine(
		rcfg,
		source,
		catalog,
		reranking.NewMMR(rcfg.Diversity, logger),
		generators.NewPopularity(logger),
		appCache,
		logger,
		gens...,
	)
}

// buildConsumer wires the NATS JetStream subscriber into the event store
// with metrics hooks.
func buildConsumer(cfg *config.Config, store *events.Store) (*events.Consumer, error) {
	wmLogger := watermill.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	sub, err := events.NewSubscriber(cfg.SubscriberSettings(), wmLogger)
	if err != nil {
		return nil, err
	}

	consumer := events.NewConsumer(sub, store)
	consumer.OnAccept = func(e *events.BehaviorEvent) {
		metrics.EventsConsumed.WithLabelValues(e.Kind.String()).Inc()
		metrics.EventStoreSize.Set(float64(store.Len()))
	}
	consumer.OnReject = func(reason string) {
		metrics.EventsRejected.WithLabelValues(reason).Inc()
	}
	return consumer, nil
}
