// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/bureau-foundation/rendezvous/lib/clock"
	"github.com/bureau-foundation/rendezvous/lib/mailbox"
)

// ResetMessage is sent to the peer when a connection closes. It is
// the only payload the relay itself produces; everything else is
// passed through untouched.
const ResetMessage = `{"type":"reset"}`

// DefaultResetTimeout bounds how long a closing connection waits for
// room in the peer's queue to deliver ResetMessage.
const DefaultResetTimeout = 5 * time.Second

// Options configures a Handler.
type Options struct {
	// Logger is the structured logger. Required.
	Logger *slog.Logger

	// Clock provides control-frame deadlines. Defaults to
	// clock.Real() if nil.
	Clock clock.Clock

	// ResetTimeout bounds delivery of ResetMessage. Defaults to
	// DefaultResetTimeout if zero.
	ResetTimeout time.Duration

	// MessagesPerSecond limits how fast one connection may push
	// messages into its peer's queue. Zero disables the limit.
	MessagesPerSecond float64

	// MessageBurst is the limiter's burst size. Defaults to 1 when a
	// rate is set and this is zero.
	MessageBurst int
}

// Handler relays websocket connections through a mailbox registry.
// It is safe for concurrent use; each Serve call is independent.
type Handler struct {
	registry     *mailbox.Registry
	logger       *slog.Logger
	clock        clock.Clock
	resetTimeout time.Duration
	messageRate  rate.Limit
	messageBurst int
}

// NewHandler creates a Handler backed by registry.
func NewHandler(registry *mailbox.Registry, options Options) *Handler {
	if registry == nil {
		panic("relay.Handler: registry is required")
	}
	if options.Logger == nil {
		panic("relay.Handler: Logger is required")
	}

	handler := &Handler{
		registry:     registry,
		logger:       options.Logger,
		clock:        options.Clock,
		resetTimeout: options.ResetTimeout,
		messageBurst: options.MessageBurst,
	}
	if handler.clock == nil {
		handler.clock = clock.Real()
	}
	if handler.resetTimeout == 0 {
		handler.resetTimeout = DefaultResetTimeout
	}
	if options.MessagesPerSecond > 0 {
		handler.messageRate = rate.Limit(options.MessagesPerSecond)
		if handler.messageBurst <= 0 {
			handler.messageBurst = 1
		}
	}
	return handler
}

// Serve relays conn as role on mailbox id until the connection or
// the mailbox ends, or ctx is cancelled. It always closes conn before
// returning and never returns the mailbox handles late: by the time
// Serve returns, another connection with the same role can check them
// out.
func (h *Handler) Serve(ctx context.Context, conn Conn, role mailbox.Role, id string) {
	logger := h.logger.With(
		"mailbox", id,
		"role", role.String(),
		"connection", uuid.NewString(),
	)

	producer, consumer, err := h.registry.Checkout(id, role)
	if err != nil {
		if errors.Is(err, mailbox.ErrRoleConflict) {
			logger.Warn("role already connected")
		} else {
			logger.Warn("mailbox checkout failed", "error", err)
		}
		h.refuse(conn, err)
		return
	}
	logger.Info("connected")

	session := &session{
		conn:         conn,
		producer:     producer,
		consumer:     consumer,
		logger:       logger,
		resetTimeout: h.resetTimeout,
	}
	if h.messageRate > 0 {
		session.limiter = rate.NewLimiter(h.messageRate, h.messageBurst)
	}

	disposition := session.run(ctx)

	h.registry.Return(id, role, producer, consumer)
	if status, ok := h.registry.Status(id); ok {
		logger.Info("channels returned to mailbox",
			"disposition", disposition,
			"initiator_connected", status.InitiatorConnected,
			"responder_connected", status.ResponderConnected,
			"pending_forward", status.PendingForward,
			"pending_reverse", status.PendingReverse,
		)
	} else {
		logger.Info("connection ended after mailbox shutdown", "disposition", disposition)
	}
}

// refuse closes a connection that could not check out its handles.
// The close frame is best-effort.
func (h *Handler) refuse(conn Conn, reason error) {
	code, text := websocket.ClosePolicyViolation, "role already connected"
	if !errors.Is(reason, mailbox.ErrRoleConflict) {
		code, text = websocket.CloseTryAgainLater, "mailbox unavailable"
	}
	deadline := h.clock.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), deadline)
	_ = conn.Close()
}
