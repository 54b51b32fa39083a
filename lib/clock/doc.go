// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// The mailbox registry stamps records with their last checkout or
// return and periodically sweeps idle ones. Both go through a [Clock]
// so that expiry can be tested without sleeping: production code uses
// [Real], tests use [Fake] and move time forward explicitly.
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	registry := mailbox.NewRegistry(mailbox.RegistryConfig{Clock: c, ...})
//	go registry.RunExpiry(ctx, time.Minute, time.Hour)
//	c.WaitForTimers(1)   // the sweeper has registered its ticker
//	c.Advance(time.Hour) // fires the ticker deterministically
package clock
