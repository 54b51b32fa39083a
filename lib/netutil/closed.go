// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"errors"
	"io"
	"net"
	"syscall"

	"github.com/gorilla/websocket"
)

// IsExpectedCloseError reports whether err is how a peer normally goes
// away: a websocket close frame (any status code), EOF, a closed
// connection, a reset, or a broken pipe. Browsers that are closed or
// refreshed mid-session often skip the closing handshake, so abrupt
// disconnects count as expected too.
//
// Anything else (oversized or malformed frames, bad UTF-8 in a close
// reason, TLS failures) is a protocol error.
func IsExpectedCloseError(err error) bool {
	if err == nil {
		return false
	}
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.EPIPE || errno == syscall.ECONNRESET
	}
	return false
}

// CloseCode returns the websocket status code carried by err, or -1
// if err is not a close frame.
func CloseCode(err error) int {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		return closeErr.Code
	}
	return -1
}
