// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// HealthChecker reports a named component's health for the readiness probe.
type HealthChecker func() (name string, healthy bool)

// MetricsService serves the operational HTTP surface: Prometheus metrics on
// /metrics, liveness on /healthz, and readiness on /readyz.
type MetricsService struct {
	addr            string
	shutdownTimeout time.Duration
	checkers        []HealthChecker
	logger          zerolog.Logger
	name            string
}

// NewMetricsService creates the operational listener service.
func NewMetricsService(addr string, shutdownTimeout time.Duration, logger zerolog.Logger, checkers ...HealthChecker) *MetricsService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &MetricsService{
		addr:            addr,
		shutdownTimeout: shutdownTimeout,
		checkers:        checkers,
		logger:          logger.With().Str("service", "metrics-http").Logger(),
		name:            "metrics-http",
	}
}

// Serve implements suture.Service. It runs the listener until context
// cancellation, then shuts down gracefully.
func (s *MetricsService) Serve(ctx context.Context) error {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", s.handleReady)

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.addr).Msg("metrics listener started")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics listener: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn().Err(err).Msg("metrics listener shutdown incomplete")
	}

	return ctx.Err()
}

func (s *MetricsService) handleReady(w http.ResponseWriter, _ *http.Request) {
	for _, check := range s.checkers {
		name, healthy := check()
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, "not ready: %s", name)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// String implements fmt.Stringer.
func (s *MetricsService) String() string {
	return s.name
}
