// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the relay's configuration.
//
// Configuration comes from a single file named by either the
// RENDEZVOUS_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There is no discovery and no search path. A
// relay started with neither runs on [Default].
//
// Files are YAML. Files ending in .json or .jsonc are accepted too:
// comments and trailing commas are stripped, and the result (which is
// valid YAML) goes through the same decoder. Durations are written as
// Go duration strings ("5s", "10m").
//
// Command-line flags override individual file values; that merge is
// done by the command, not here.
//
// This package depends on no other rendezvous packages.
package config
