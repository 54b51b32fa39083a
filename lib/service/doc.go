// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package service provides the process scaffolding shared by relay
// binaries: a TCP HTTP server with readiness signalling and graceful
// shutdown ([HTTPServer]), and the standard structured logger
// ([NewLogger]).
//
// Binaries compose these in their own run function rather than
// subclassing a framework. The package provides building blocks, not
// a runtime.
//
// # Shutdown and upgraded connections
//
// http.Server.Shutdown does not wait for hijacked connections, and
// websocket sessions are hijacked. Request contexts derive from the
// context passed to [HTTPServer.Serve], so long-lived handlers observe
// shutdown through r.Context() and must return when it is cancelled.
package service
