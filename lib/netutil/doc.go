// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil classifies connection errors.
//
// The relay treats a peer going away differently from a peer speaking
// a broken protocol: the former triggers a reset notice to the other
// side, the latter is only logged. [IsExpectedCloseError] draws that
// line for errors returned by websocket reads.
package netutil
