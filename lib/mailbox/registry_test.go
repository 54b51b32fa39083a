// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mailbox

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/rendezvous/lib/clock"
	"github.com/bureau-foundation/rendezvous/lib/testutil"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRegistry(t *testing.T) (*Registry, *clock.FakeClock) {
	t.Helper()
	fakeClock := clock.Fake(epoch)
	return NewRegistry(RegistryConfig{Clock: fakeClock, Logger: testLogger()}), fakeClock
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		segment string
		want    Role
		wantErr bool
	}{
		{segment: "initiator", want: Initiator},
		{segment: "responder", want: Responder},
		{segment: "alice", want: Initiator},
		{segment: "bob", want: Responder},
		{segment: "carol", wantErr: true},
		{segment: "", wantErr: true},
		{segment: "Initiator", wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.segment, func(t *testing.T) {
			got, err := ParseRole(test.segment)
			if test.wantErr {
				if err == nil {
					t.Fatalf("ParseRole(%q) = %v, want error", test.segment, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRole(%q): %v", test.segment, err)
			}
			if got != test.want {
				t.Errorf("ParseRole(%q) = %v, want %v", test.segment, got, test.want)
			}
		})
	}
}

func TestRolePeer(t *testing.T) {
	if Initiator.Peer() != Responder {
		t.Errorf("Initiator.Peer() = %v, want responder", Initiator.Peer())
	}
	if Responder.Peer() != Initiator {
		t.Errorf("Responder.Peer() = %v, want initiator", Responder.Peer())
	}
}

func TestGetOrCreateReturnsSameRecord(t *testing.T) {
	registry, _ := newTestRegistry(t)

	first := registry.GetOrCreate("abc")
	second := registry.GetOrCreate("abc")
	if first != second {
		t.Fatal("GetOrCreate built two records for one identifier")
	}
	if first.ID() != "abc" {
		t.Errorf("ID() = %q, want %q", first.ID(), "abc")
	}

	status, ok := registry.Status("abc")
	if !ok {
		t.Fatal("Status(abc) not found after GetOrCreate")
	}
	if status.InitiatorConnected || status.ResponderConnected {
		t.Errorf("fresh record reports connections: %+v", status)
	}
}

func TestGetOrCreateConcurrent(t *testing.T) {
	registry, _ := newTestRegistry(t)

	const workers = 32
	records := make([]*Record, workers)
	var wait sync.WaitGroup
	for i := range workers {
		wait.Add(1)
		go func() {
			defer wait.Done()
			records[i] = registry.GetOrCreate("shared")
		}()
	}
	wait.Wait()

	for i, record := range records {
		if record != records[0] {
			t.Fatalf("worker %d got a different record", i)
		}
	}
	if stats := registry.Stats(); stats.Mailboxes != 1 {
		t.Fatalf("Mailboxes = %d, want 1", stats.Mailboxes)
	}
}

func TestCheckoutRoleConflict(t *testing.T) {
	registry, _ := newTestRegistry(t)

	if _, _, err := registry.Checkout("dup", Initiator); err != nil {
		t.Fatalf("first checkout: %v", err)
	}

	_, _, err := registry.Checkout("dup", Initiator)
	if !errors.Is(err, ErrRoleConflict) {
		t.Fatalf("second checkout error = %v, want ErrRoleConflict", err)
	}
	var conflict *RoleConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("error %T is not *RoleConflictError", err)
	}
	if conflict.ID != "dup" || conflict.Role != Initiator {
		t.Errorf("conflict = %+v, want dup/initiator", conflict)
	}

	// The other role is unaffected.
	if _, _, err := registry.Checkout("dup", Responder); err != nil {
		t.Fatalf("responder checkout after initiator conflict: %v", err)
	}
}

func TestCheckoutConcurrentSameRole(t *testing.T) {
	registry, _ := newTestRegistry(t)

	const workers = 16
	var wait sync.WaitGroup
	var mu sync.Mutex
	successes, conflicts := 0, 0
	for range workers {
		wait.Add(1)
		go func() {
			defer wait.Done()
			_, _, err := registry.Checkout("race", Responder)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrRoleConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wait.Wait()

	if successes != 1 || conflicts != workers-1 {
		t.Fatalf("successes = %d, conflicts = %d; want 1 and %d", successes, conflicts, workers-1)
	}
}

func TestCheckoutInvalidRole(t *testing.T) {
	registry, _ := newTestRegistry(t)
	if _, _, err := registry.Checkout("abc", Role(0)); err == nil {
		t.Fatal("Checkout with zero Role succeeded")
	}
	if registry.Stats().Mailboxes != 0 {
		t.Fatal("invalid checkout created a record")
	}
}

func TestReturnAllowsReconnect(t *testing.T) {
	registry, _ := newTestRegistry(t)

	for _, role := range []Role{Initiator, Responder} {
		t.Run(role.String(), func(t *testing.T) {
			id := testutil.UniqueID("reconnect")
			producer, consumer, err := registry.Checkout(id, role)
			if err != nil {
				t.Fatalf("checkout: %v", err)
			}
			status, _ := registry.Status(id)
			if connected := roleConnected(status, role); !connected {
				t.Fatalf("%s not reported connected after checkout", role)
			}

			registry.Return(id, role, producer, consumer)

			status, _ = registry.Status(id)
			if roleConnected(status, role) {
				t.Fatalf("%s still reported connected after return", role)
			}

			again, againConsumer, err := registry.Checkout(id, role)
			if err != nil {
				t.Fatalf("checkout after return: %v", err)
			}
			if again != producer || againConsumer != consumer {
				t.Error("reconnect received different handles than were returned")
			}
		})
	}
}

func roleConnected(status Status, role Role) bool {
	if role == Initiator {
		return status.InitiatorConnected
	}
	return status.ResponderConnected
}

func TestReturnTwicePanics(t *testing.T) {
	registry, _ := newTestRegistry(t)
	producer, consumer, err := registry.Checkout("abc", Initiator)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	registry.Return("abc", Initiator, producer, consumer)

	defer func() {
		if recover() == nil {
			t.Fatal("second Return did not panic")
		}
	}()
	registry.Return("abc", Initiator, producer, consumer)
}

func TestQueuesConnectRoles(t *testing.T) {
	registry, _ := newTestRegistry(t)
	ctx := context.Background()

	initiatorProducer, initiatorConsumer, err := registry.Checkout("abc", Initiator)
	if err != nil {
		t.Fatalf("initiator checkout: %v", err)
	}
	responderProducer, responderConsumer, err := registry.Checkout("abc", Responder)
	if err != nil {
		t.Fatalf("responder checkout: %v", err)
	}

	messages := []string{"one", "two", "three"}
	for _, message := range messages {
		if err := initiatorProducer.Send(ctx, message); err != nil {
			t.Fatalf("Send(%q): %v", message, err)
		}
	}
	for _, want := range messages {
		got := testutil.RequireReceive(t, responderConsumer.Messages(), 5*time.Second, "forward message")
		if got != want {
			t.Fatalf("responder received %q, want %q", got, want)
		}
	}

	if err := responderProducer.Send(ctx, "world"); err != nil {
		t.Fatalf("responder Send: %v", err)
	}
	if got := testutil.RequireReceive(t, initiatorConsumer.Messages(), 5*time.Second, "reverse message"); got != "world" {
		t.Fatalf("initiator received %q, want %q", got, "world")
	}
}

func TestMailboxesAreIsolated(t *testing.T) {
	registry, _ := newTestRegistry(t)
	ctx := context.Background()

	producerOne, _, err := registry.Checkout("id1", Initiator)
	if err != nil {
		t.Fatalf("checkout id1: %v", err)
	}
	if _, _, err := registry.Checkout("id1", Initiator); !errors.Is(err, ErrRoleConflict) {
		t.Fatalf("duplicate checkout on id1 = %v, want conflict", err)
	}

	// The conflict on id1 does not affect id2.
	_, consumerTwo, err := registry.Checkout("id2", Responder)
	if err != nil {
		t.Fatalf("checkout id2: %v", err)
	}
	if _, _, err := registry.Checkout("id2", Initiator); err != nil {
		t.Fatalf("initiator checkout id2: %v", err)
	}

	if err := producerOne.Send(ctx, "only for id1"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if message, ok := consumerTwo.TryReceive(); ok {
		t.Fatalf("id2 consumer received %q sent on id1", message)
	}
	status, _ := registry.Status("id1")
	if status.PendingForward != 1 {
		t.Errorf("id1 PendingForward = %d, want 1", status.PendingForward)
	}
}

func TestSendSuspendsAtCapacity(t *testing.T) {
	registry := NewRegistry(RegistryConfig{Capacity: 2, Logger: testLogger()})
	producer, _, err := registry.Checkout("full", Initiator)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	_, consumer, err := registry.Checkout("full", Responder)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	ctx := context.Background()
	for _, message := range []string{"a", "b"} {
		if err := producer.Send(ctx, message); err != nil {
			t.Fatalf("Send(%q): %v", message, err)
		}
	}

	sent := make(chan error, 1)
	go func() { sent <- producer.Send(ctx, "c") }()
	testutil.RequireNoReceive(t, sent, 50*time.Millisecond, "Send returned while queue full")

	if got := testutil.RequireReceive(t, consumer.Messages(), 5*time.Second, "drain"); got != "a" {
		t.Fatalf("drained %q, want %q", got, "a")
	}
	if err := testutil.RequireReceive(t, sent, 5*time.Second, "blocked Send"); err != nil {
		t.Fatalf("blocked Send: %v", err)
	}
	if consumer.Pending() != 2 {
		t.Fatalf("Pending() = %d, want 2", consumer.Pending())
	}
}

func TestSendHonorsContext(t *testing.T) {
	registry := NewRegistry(RegistryConfig{Capacity: 1, Logger: testLogger()})
	producer, _, err := registry.Checkout("ctx", Responder)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if err := producer.Send(context.Background(), "fills"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := producer.Send(ctx, "blocked"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Send with cancelled ctx = %v, want context.Canceled", err)
	}
}

func TestCloseEndsStreams(t *testing.T) {
	registry, _ := newTestRegistry(t)
	producer, _, err := registry.Checkout("shutdown", Initiator)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	_, consumer, err := registry.Checkout("shutdown", Responder)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if err := producer.Send(context.Background(), "buffered"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	registry.Close()

	testutil.RequireClosed(t, consumer.Closed(), 5*time.Second, "consumer end of stream")
	if message, ok := consumer.TryReceive(); !ok || message != "buffered" {
		t.Fatalf("TryReceive after close = %q, %v; want buffered message", message, ok)
	}
	if _, ok := consumer.TryReceive(); ok {
		t.Fatal("TryReceive returned a second message")
	}
	if err := producer.Send(context.Background(), "late"); !errors.Is(err, ErrClosed) {
		t.Fatalf("Send after close = %v, want ErrClosed", err)
	}
	if _, _, err := registry.Checkout("other", Initiator); !errors.Is(err, ErrRegistryClosed) {
		t.Fatalf("Checkout after close = %v, want ErrRegistryClosed", err)
	}

	// Returning after close is accepted and discarded.
	registry.Return("shutdown", Initiator, producer, &Consumer{queue: newQueue(1)})
	if registry.Stats().Mailboxes != 0 {
		t.Fatal("Return after Close recreated a record")
	}
}

func TestStats(t *testing.T) {
	registry, _ := newTestRegistry(t)
	registry.GetOrCreate("empty")
	if _, _, err := registry.Checkout("half", Initiator); err != nil {
		t.Fatal(err)
	}
	if _, _, err := registry.Checkout("full", Initiator); err != nil {
		t.Fatal(err)
	}
	if _, _, err := registry.Checkout("full", Responder); err != nil {
		t.Fatal(err)
	}

	got := registry.Stats()
	want := Stats{Mailboxes: 3, Connections: 3, Paired: 1}
	if got != want {
		t.Fatalf("Stats() = %+v, want %+v", got, want)
	}
}
