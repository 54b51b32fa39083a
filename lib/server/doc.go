// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package server maps HTTP requests onto the relay.
//
// Routes:
//
//	GET /initiator/mailbox/:id   websocket, relayed as the initiator
//	GET /responder/mailbox/:id   websocket, relayed as the responder
//	GET /alice/mailbox/:id       alias of /initiator/mailbox/:id
//	GET /bob/mailbox/:id         alias of /responder/mailbox/:id
//	GET /                        index.html
//	GET /initiator (and aliases) app.html
//	GET /status                  registry counts and build information
//	GET /status/:id              one mailbox's connection and queue state
//	GET /*file                   embedded asset, or 404
//
// Status responses are JSON unless the request's Accept header names
// application/cbor. Router-level errors (no route, wrong method,
// handler panic) are JSON objects with an "error" field.
//
// Upgrade routes are never compressed: the gzip writer cannot be
// hijacked. Everything is wrapped in access logging, and optionally in
// proxy header handling.
package server
