// Cadenza - Music Recommendation Fusion Service
// Copyright 2026 R. Solari (cadenzafm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cadenzafm/cadenza

// Package config loads layered application configuration: built-in defaults,
// an optional YAML file, and CADENZA_-prefixed environment variables, with
// later layers overriding earlier ones.
package config
