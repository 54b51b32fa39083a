// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mailbox

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/bureau-foundation/rendezvous/lib/clock"
)

// RegistryConfig configures a Registry.
type RegistryConfig struct {
	// Capacity is the per-direction queue capacity. Defaults to
	// DefaultCapacity if zero.
	Capacity int

	// Clock stamps record activity for expiry. Defaults to
	// clock.Real() if nil.
	Clock clock.Clock

	// Logger is the structured logger. Required.
	Logger *slog.Logger
}

// Registry maps pairing identifiers to mailbox records. It is safe
// for concurrent use; every method holds the mutex only for the map
// access and slot updates, never across a queue operation.
type Registry struct {
	mu      sync.Mutex
	records map[string]*Record
	closed  bool

	capacity int
	clock    clock.Clock
	logger   *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(config RegistryConfig) *Registry {
	if config.Logger == nil {
		panic("mailbox.Registry: Logger is required")
	}
	if config.Capacity < 0 {
		panic("mailbox.Registry: Capacity must not be negative")
	}
	capacity := config.Capacity
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	timeSource := config.Clock
	if timeSource == nil {
		timeSource = clock.Real()
	}
	return &Registry{
		records:  make(map[string]*Record),
		capacity: capacity,
		clock:    timeSource,
		logger:   config.Logger,
	}
}

// GetOrCreate returns the record for id, creating it with all four
// handles present if it does not exist yet.
func (r *Registry) GetOrCreate(id string) *Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getOrCreateLocked(id)
}

func (r *Registry) getOrCreateLocked(id string) *Record {
	record, ok := r.records[id]
	if !ok {
		record = newRecord(id, r.capacity, r.clock.Now())
		r.records[id] = record
		r.logger.Info("mailbox opened", "mailbox", id)
	}
	return record
}

// Checkout claims the handles role needs on mailbox id: the initiator
// gets the forward producer and reverse consumer, the responder the
// reverse producer and forward consumer. The record is created if
// needed. If either handle is already checked out the call fails with
// a *RoleConflictError and takes nothing.
func (r *Registry) Checkout(id string, role Role) (*Producer, *Consumer, error) {
	if !role.Valid() {
		return nil, nil, fmt.Errorf("mailbox %q: invalid %v", id, role)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, nil, ErrRegistryClosed
	}

	record := r.getOrCreateLocked(id)
	producerSlot, consumerSlot := record.slots(role)
	if *producerSlot == nil || *consumerSlot == nil {
		return nil, nil, &RoleConflictError{ID: id, Role: role}
	}

	producer, consumer := *producerSlot, *consumerSlot
	*producerSlot, *consumerSlot = nil, nil
	record.lastActive = r.clock.Now()
	return producer, consumer, nil
}

// Return puts handles previously obtained from Checkout back into the
// record for id so a later connection with the same role can claim
// them. Returning into a slot that is already filled means a handle
// was duplicated, which is a programming error and panics.
//
// If the record no longer exists it is recreated around the returned
// handles. Expiry never removes a record with handles checked out, so
// this is not expected in practice. After Close the handles are
// discarded.
func (r *Registry) Return(id string, role Role, producer *Producer, consumer *Consumer) {
	if producer == nil || consumer == nil {
		panic(fmt.Sprintf("mailbox %q: %s returned a nil handle", id, role))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		// The queues are already closed; nothing can reuse them.
		return
	}

	record, ok := r.records[id]
	if !ok {
		r.logger.Warn("handles returned to missing mailbox", "mailbox", id, "role", role.String())
		record = &Record{id: id, created: r.clock.Now()}
		if role == Initiator {
			record.forward, record.reverse = producer.queue, consumer.queue
		} else {
			record.forward, record.reverse = consumer.queue, producer.queue
		}
		peerProducer, peerConsumer := record.slots(role.Peer())
		*peerProducer = &Producer{queue: consumer.queue}
		*peerConsumer = &Consumer{queue: producer.queue}
		r.records[id] = record
	}

	producerSlot, consumerSlot := record.slots(role)
	if *producerSlot != nil || *consumerSlot != nil {
		panic(fmt.Sprintf("mailbox %q: %s handles returned twice", id, role))
	}
	*producerSlot, *consumerSlot = producer, consumer
	record.lastActive = r.clock.Now()
}

// Status returns a snapshot of the record for id.
func (r *Registry) Status(id string) (Status, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return Status{}, false
	}
	return record.status(), true
}

// Stats summarizes the registry.
type Stats struct {
	Mailboxes   int `json:"mailboxes" cbor:"mailboxes"`
	Connections int `json:"connections" cbor:"connections"`
	Paired      int `json:"paired" cbor:"paired"`
}

// Stats counts records, live role connections, and records with both
// roles connected.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := Stats{Mailboxes: len(r.records)}
	for _, record := range r.records {
		initiator, responder := record.connected(Initiator), record.connected(Responder)
		if initiator {
			stats.Connections++
		}
		if responder {
			stats.Connections++
		}
		if initiator && responder {
			stats.Paired++
		}
	}
	return stats
}

// Close closes every queue and rejects further checkouts. Relay loops
// holding consumers observe end of stream; producers get ErrClosed.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	for id, record := range r.records {
		record.close()
		delete(r.records, id)
	}
	r.logger.Info("mailbox registry closed")
}
