// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mailbox

import "fmt"

// Role is one of the two participant slots of a mailbox.
type Role int

const (
	// Initiator sends on the forward queue and receives on the
	// reverse queue.
	Initiator Role = iota + 1

	// Responder sends on the reverse queue and receives on the
	// forward queue.
	Responder
)

// String returns the role's path segment form.
func (r Role) String() string {
	switch r {
	case Initiator:
		return "initiator"
	case Responder:
		return "responder"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Peer returns the opposite role.
func (r Role) Peer() Role {
	if r == Initiator {
		return Responder
	}
	return Initiator
}

// Valid reports whether r is Initiator or Responder.
func (r Role) Valid() bool {
	return r == Initiator || r == Responder
}

// ParseRole maps a URL path segment to a Role. "alice" and "bob" are
// accepted as aliases for clients written against the older route
// names.
func ParseRole(segment string) (Role, error) {
	switch segment {
	case "initiator", "alice":
		return Initiator, nil
	case "responder", "bob":
		return Responder, nil
	default:
		return 0, fmt.Errorf("unknown role %q", segment)
	}
}
