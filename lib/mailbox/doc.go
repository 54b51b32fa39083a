// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package mailbox holds the rendezvous state shared by relay
// connections: one [Record] per pairing identifier, each owning a
// pair of bounded, ordered message queues.
//
// A pairing identifier is an opaque client-chosen string. Two peers
// that present the same identifier under different roles ([Initiator]
// and [Responder]) end up talking through the same record:
//
//	initiator ──forward──▶ responder
//	initiator ◀──reverse── responder
//
// Each direction has exactly one [Producer] and one [Consumer]. The
// [Registry] owns them until a connection checks them out: the
// initiator takes the forward producer and the reverse consumer, the
// responder takes the opposite pair. While checked out, the slots in
// the record are empty, which is how a second connection for the same
// role is detected ([ErrRoleConflict]). When a connection ends it
// returns its handles with [Registry.Return] so a later connection for
// that role can resume, and anything the surviving peer queued in the
// meantime (up to the queue capacity) is delivered on reconnect.
//
// Records are created lazily by [Registry.GetOrCreate] or
// [Registry.Checkout] and are never removed while any handle is
// checked out. [Registry.Expire] and [Registry.RunExpiry] optionally
// drop records that have sat idle with no connection for a configured
// duration; expiry holds the registry lock, so it cannot interleave
// with a checkout.
//
// All registry operations take a single mutex for the duration of a
// map lookup and slot swap. No lock is held while a queue send or
// receive is suspended.
package mailbox
