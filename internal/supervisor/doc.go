// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

// Package supervisor builds the suture supervision tree that keeps the event
// consumer, matrix warmup loop, and operational HTTP listener running with
// restart-on-failure semantics. Service wrappers live in the services
// subpackage.
package supervisor
