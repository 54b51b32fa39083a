// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package assets serves the browser client bundled into the binary.
//
// The files under static/ are embedded at compile time. [Load] indexes
// them once, computing a content type from the file extension and a
// strong ETag from the BLAKE3 digest of the content, so conditional
// requests from a returning browser are answered with 304 Not Modified.
// Compression is left to the router, which wraps asset routes (and
// only asset routes) in a gzip handler.
package assets
