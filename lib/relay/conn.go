// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import "time"

// Conn is the subset of *websocket.Conn the relay uses. ReadMessage
// is only called from one goroutine, WriteMessage from another;
// WriteControl and Close may be called concurrently with either.
type Conn interface {
	ReadMessage() (messageType int, payload []byte, err error)
	WriteMessage(messageType int, payload []byte) error
	WriteControl(messageType int, payload []byte, deadline time.Time) error
	Close() error
}
