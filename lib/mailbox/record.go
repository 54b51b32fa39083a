// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mailbox

import "time"

// Record is the per-identifier container of a mailbox's two queues
// and their four handles. A nil slot means the handle is checked out
// by a live connection. All fields other than id and the queues are
// guarded by the owning Registry's mutex.
type Record struct {
	id      string
	forward *queue // initiator → responder
	reverse *queue // responder → initiator

	forwardProducer *Producer
	forwardConsumer *Consumer
	reverseProducer *Producer
	reverseConsumer *Consumer

	created    time.Time
	lastActive time.Time
}

func newRecord(id string, capacity int, now time.Time) *Record {
	forward := newQueue(capacity)
	reverse := newQueue(capacity)
	return &Record{
		id:              id,
		forward:         forward,
		reverse:         reverse,
		forwardProducer: &Producer{queue: forward},
		forwardConsumer: &Consumer{queue: forward},
		reverseProducer: &Producer{queue: reverse},
		reverseConsumer: &Consumer{queue: reverse},
		created:         now,
		lastActive:      now,
	}
}

// ID returns the pairing identifier.
func (r *Record) ID() string { return r.id }

// slots returns pointers to the producer and consumer slots a role
// checks out: the initiator sends forward and receives reverse.
func (r *Record) slots(role Role) (**Producer, **Consumer) {
	if role == Initiator {
		return &r.forwardProducer, &r.reverseConsumer
	}
	return &r.reverseProducer, &r.forwardConsumer
}

// connected reports whether role currently holds its handles.
func (r *Record) connected(role Role) bool {
	producer, consumer := r.slots(role)
	return *producer == nil || *consumer == nil
}

// idle reports whether every handle is back in the record.
func (r *Record) idle() bool {
	return !r.connected(Initiator) && !r.connected(Responder)
}

func (r *Record) close() {
	r.forward.close()
	r.reverse.close()
}

// Status is a point-in-time view of a record for diagnostics.
type Status struct {
	ID                 string    `json:"id" cbor:"id"`
	InitiatorConnected bool      `json:"initiator_connected" cbor:"initiator_connected"`
	ResponderConnected bool      `json:"responder_connected" cbor:"responder_connected"`
	PendingForward     int       `json:"pending_forward" cbor:"pending_forward"`
	PendingReverse     int       `json:"pending_reverse" cbor:"pending_reverse"`
	Created            time.Time `json:"created" cbor:"created"`
	LastActive         time.Time `json:"last_active" cbor:"last_active"`
}

func (r *Record) status() Status {
	return Status{
		ID:                 r.id,
		InitiatorConnected: r.connected(Initiator),
		ResponderConnected: r.connected(Responder),
		PendingForward:     len(r.forward.messages),
		PendingReverse:     len(r.reverse.messages),
		Created:            r.created,
		LastActive:         r.lastActive,
	}
}
