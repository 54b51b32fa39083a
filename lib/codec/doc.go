// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the relay's CBOR encoding configuration.
//
// The relay speaks JSON to browsers and CBOR to tooling that asks for
// it: the /status endpoint answers with CBOR when the request carries
// Accept: application/cbor. Both formats are produced from the same
// structs, which carry json and cbor tags side by side.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
package codec
