// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mailbox

import (
	"errors"
	"fmt"
)

var (
	// ErrRoleConflict is matched by errors.Is when a checkout finds
	// the role's handles already taken by a live connection.
	ErrRoleConflict = errors.New("role already connected")

	// ErrClosed is returned by Producer.Send once the queue has been
	// closed by registry shutdown or expiry.
	ErrClosed = errors.New("mailbox queue closed")

	// ErrRegistryClosed is returned by Checkout after Registry.Close.
	ErrRegistryClosed = errors.New("mailbox registry closed")
)

// RoleConflictError identifies which mailbox and role were already
// occupied. It matches ErrRoleConflict with errors.Is:
//
//	var conflict *RoleConflictError
//	if errors.As(err, &conflict) {
//	    logger.Warn("role already connected", "mailbox", conflict.ID, "role", conflict.Role)
//	}
type RoleConflictError struct {
	ID   string
	Role Role
}

func (e *RoleConflictError) Error() string {
	return fmt.Sprintf("mailbox %q: %s: %v", e.ID, e.Role, ErrRoleConflict)
}

// Is reports whether target is ErrRoleConflict.
func (e *RoleConflictError) Is(target error) bool {
	return target == ErrRoleConflict
}
