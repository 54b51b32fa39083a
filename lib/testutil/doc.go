// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive], [RequireSend], and [RequireClosed] wrap the
// "select with a timeout" pattern so relay and mailbox tests never
// hang when a message fails to arrive. They are the only place tests
// use real wall-clock timeouts.
//
// [UniqueID] generates distinct pairing identifiers so tests sharing a
// registry never collide by accident.
package testutil
