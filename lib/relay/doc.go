// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package relay runs one websocket connection against a mailbox.
//
// [Handler.Serve] owns a connection from upgrade to teardown. It
// checks out the connection's role handles from the
// [mailbox.Registry], then relays in both directions until either
// side fails:
//
//   - text frames read from the connection are sent on the role's
//     producer (the peer's inbound queue);
//   - messages arriving on the role's consumer are written to the
//     connection as text frames.
//
// The two sources are raced with a select, so neither direction is
// prioritized. Binary frames are ignored.
//
// When the connection closes, the relay sends the reset notice
// [ResetMessage] to the peer so it knows its counterpart left. The
// handles are returned to the registry on every exit path, so the
// same role can reconnect later and pick up whatever the peer queued
// while it was away.
//
// A connection that asks for a role already held by a live
// connection is closed immediately with status 1008 and never
// touches the mailbox.
package relay
