// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// rendezvous-relay pairs two websocket clients through a named mailbox
// and relays text messages between them.
//
// A client connects to /initiator/mailbox/<id> or
// /responder/mailbox/<id>. Whatever one role sends is queued for the
// other, in order, whether or not the other role is connected yet.
// When a connection ends, its peer receives {"type":"reset"} and the
// role becomes free for a reconnect. A second connection for a role
// that is already taken is closed with code 1008.
//
// Configuration comes from --config or RENDEZVOUS_CONFIG (YAML or
// JSONC); without either, built-in defaults apply. --host, --port,
// --log-level and --log-format override the file.
//
// The process runs until SIGINT or SIGTERM. On shutdown it stops
// accepting connections, lets in-flight requests drain, then closes
// every mailbox so that open relays end.
package main
