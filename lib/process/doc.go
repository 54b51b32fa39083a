// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides entrypoint helpers for relay binaries. It
// is the one place raw stderr output is allowed: reporting a fatal
// error from run() when the structured logger may not exist yet.
package process
