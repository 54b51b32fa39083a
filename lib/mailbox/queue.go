// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mailbox

import (
	"context"
	"sync"
)

// DefaultCapacity is the number of messages a queue buffers before
// Send suspends.
const DefaultCapacity = 32

// queue is one direction of a mailbox: a bounded FIFO of text
// messages with a close signal that is separate from the data
// channel, so a Send racing with close returns ErrClosed instead of
// panicking.
type queue struct {
	messages  chan string
	closed    chan struct{}
	closeOnce sync.Once
}

func newQueue(capacity int) *queue {
	return &queue{
		messages: make(chan string, capacity),
		closed:   make(chan struct{}),
	}
}

func (q *queue) close() {
	q.closeOnce.Do(func() { close(q.closed) })
}

func (q *queue) isClosed() bool {
	select {
	case <-q.closed:
		return true
	default:
		return false
	}
}

// Producer is the sending end of a queue.
type Producer struct {
	queue *queue
}

// Send appends message to the queue, suspending while it is full.
// Returns ErrClosed if the queue is closed, or ctx.Err() if ctx ends
// first.
func (p *Producer) Send(ctx context.Context, message string) error {
	if p.queue.isClosed() {
		return ErrClosed
	}
	select {
	case p.queue.messages <- message:
		return nil
	case <-p.queue.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consumer is the receiving end of a queue.
type Consumer struct {
	queue *queue
}

// Messages returns the channel to receive queued messages from. It is
// never closed; watch Closed for end of stream.
func (c *Consumer) Messages() <-chan string {
	return c.queue.messages
}

// Closed is closed once no more messages will be produced. Messages
// buffered before the close can still be drained with TryReceive.
func (c *Consumer) Closed() <-chan struct{} {
	return c.queue.closed
}

// TryReceive returns a buffered message without blocking.
func (c *Consumer) TryReceive() (string, bool) {
	select {
	case message := <-c.queue.messages:
		return message, true
	default:
		return "", false
	}
}

// Pending returns the number of buffered messages.
func (c *Consumer) Pending() int {
	return len(c.queue.messages)
}
