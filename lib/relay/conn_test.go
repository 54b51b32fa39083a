// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// memoryConn is an in-process Conn. The test plays the remote peer:
// it injects frames with Send/SendBinary/HangUp/Fail and reads what
// the relay wrote from Written.
type memoryConn struct {
	inbound  chan frame
	written  chan string
	controls chan []byte

	closed    chan struct{}
	closeOnce sync.Once
}

func newMemoryConn() *memoryConn {
	return &memoryConn{
		inbound:  make(chan frame),
		written:  make(chan string, 64),
		controls: make(chan []byte, 4),
		closed:   make(chan struct{}),
	}
}

func (c *memoryConn) ReadMessage() (int, []byte, error) {
	select {
	case inbound := <-c.inbound:
		return inbound.messageType, inbound.payload, inbound.err
	case <-c.closed:
		return 0, nil, net.ErrClosed
	}
}

func (c *memoryConn) WriteMessage(messageType int, payload []byte) error {
	select {
	case <-c.closed:
		return net.ErrClosed
	default:
	}
	select {
	case c.written <- string(payload):
		return nil
	case <-c.closed:
		return net.ErrClosed
	}
}

func (c *memoryConn) WriteControl(messageType int, payload []byte, _ time.Time) error {
	select {
	case c.controls <- payload:
	default:
	}
	return nil
}

func (c *memoryConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

// deliver hands one frame to the relay's reader. Returns false if the
// relay closed the connection first.
func (c *memoryConn) deliver(inbound frame, timeout time.Duration) bool {
	select {
	case c.inbound <- inbound:
		return true
	case <-c.closed:
		return false
	case <-time.After(timeout): //nolint:realclock test hang prevention
		return false
	}
}

func (c *memoryConn) Send(text string) bool {
	return c.deliver(frame{messageType: websocket.TextMessage, payload: []byte(text)}, 5*time.Second)
}

func (c *memoryConn) SendBinary(data []byte) bool {
	return c.deliver(frame{messageType: websocket.BinaryMessage, payload: data}, 5*time.Second)
}

func (c *memoryConn) HangUp() bool {
	return c.deliver(frame{err: &websocket.CloseError{Code: websocket.CloseNormalClosure}}, 5*time.Second)
}

func (c *memoryConn) Fail(err error) bool {
	return c.deliver(frame{err: err}, 5*time.Second)
}

func (c *memoryConn) Written() <-chan string { return c.written }

func (c *memoryConn) Closed() <-chan struct{} { return c.closed }
