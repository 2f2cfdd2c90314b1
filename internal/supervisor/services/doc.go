// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

// Package services adapts Cadenza's long-running components to suture's
// Serve lifecycle: the NATS event consumer, the matrix warmup loop, and the
// metrics/health HTTP listener.
package services
