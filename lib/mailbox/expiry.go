// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mailbox

import (
	"context"
	"time"
)

// Expire removes records that have no connection for either role and
// whose last checkout or return is at least idle ago. Queued messages
// in an expired record are discarded. Returns the number removed.
//
// Expire runs entirely under the registry lock, so a record cannot be
// checked out while it is being evaluated or removed.
func (r *Registry) Expire(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	removed := 0
	for id, record := range r.records {
		if !record.idle() || now.Sub(record.lastActive) < idle {
			continue
		}
		record.close()
		delete(r.records, id)
		removed++
		r.logger.Info("mailbox expired",
			"mailbox", id,
			"idle", now.Sub(record.lastActive),
			"discarded", len(record.forward.messages)+len(record.reverse.messages),
		)
	}
	return removed
}

// RunExpiry calls Expire(idle) every interval until ctx is cancelled.
// A non-positive idle disables expiry and RunExpiry just waits for
// ctx. Always returns nil.
func (r *Registry) RunExpiry(ctx context.Context, interval, idle time.Duration) error {
	if idle <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := r.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if removed := r.Expire(idle); removed > 0 {
				r.logger.Debug("expiry sweep", "removed", removed, "remaining", r.Stats().Mailboxes)
			}
		}
	}
}
