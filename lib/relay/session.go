// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"context"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/bureau-foundation/rendezvous/lib/mailbox"
	"github.com/bureau-foundation/rendezvous/lib/netutil"
)

// disposition records why a relay loop ended.
type disposition string

const (
	dispositionClosed        disposition = "closed"
	dispositionProtocolError disposition = "protocol_error"
	dispositionSendFailed    disposition = "send_failed"
	dispositionWriteFailed   disposition = "write_failed"
	dispositionExhausted     disposition = "exhausted"
	dispositionShutdown      disposition = "shutdown"
)

// frame is one ReadMessage result handed from the reader goroutine to
// the relay loop.
type frame struct {
	messageType int
	payload     []byte
	err         error
}

// session is the relay loop state for one checked-out connection.
type session struct {
	conn         Conn
	producer     *mailbox.Producer
	consumer     *mailbox.Consumer
	limiter      *rate.Limiter
	logger       *slog.Logger
	resetTimeout time.Duration
}

// run relays until the connection or the mailbox ends. The connection
// is closed and the reader goroutine has exited when run returns.
func (s *session) run(ctx context.Context) disposition {
	// sendCtx is cancelled as soon as the reader sees the connection
	// fail, so a Send blocked on a full peer queue gives up instead of
	// holding the handles indefinitely.
	sendCtx, cancelSend := context.WithCancel(ctx)

	frames := make(chan frame)
	stop := make(chan struct{})
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		s.read(frames, stop, cancelSend)
	}()
	defer func() {
		close(stop)
		cancelSend()
		_ = s.conn.Close()
		<-readerDone
	}()

	for {
		select {
		case <-ctx.Done():
			return dispositionShutdown

		case inbound := <-frames:
			if inbound.err != nil {
				return s.inboundFailed(ctx, inbound.err)
			}
			if inbound.messageType != websocket.TextMessage {
				continue
			}
			if err := s.forward(sendCtx, string(inbound.payload)); err != nil {
				switch {
				case ctx.Err() != nil:
					return dispositionShutdown
				case sendCtx.Err() != nil:
					// The reader failed while we were blocked; its
					// error frame is next.
					continue
				}
				s.logger.Warn("tx: could not forward message", "error", err)
				return dispositionSendFailed
			}

		case message := <-s.consumer.Messages():
			if err := s.conn.WriteMessage(websocket.TextMessage, []byte(message)); err != nil {
				s.logger.Warn("ws: could not forward message", "error", err)
				return dispositionWriteFailed
			}

		case <-s.consumer.Closed():
			if message, ok := s.consumer.TryReceive(); ok {
				if err := s.conn.WriteMessage(websocket.TextMessage, []byte(message)); err != nil {
					s.logger.Warn("ws: could not forward message", "error", err)
					return dispositionWriteFailed
				}
				continue
			}
			s.logger.Error("rx: peer queue closed")
			return dispositionExhausted
		}
	}
}

// read feeds frames to the relay loop until a read fails or stop is
// closed. The failing read is delivered too, after cancelSend.
func (s *session) read(frames chan<- frame, stop <-chan struct{}, cancelSend context.CancelFunc) {
	for {
		messageType, payload, err := s.conn.ReadMessage()
		if err != nil {
			cancelSend()
		}
		select {
		case frames <- frame{messageType: messageType, payload: payload, err: err}:
		case <-stop:
			return
		}
		if err != nil {
			return
		}
	}
}

// forward pushes one inbound message into the peer's queue, waiting
// on the rate limiter first when one is configured.
func (s *session) forward(ctx context.Context, message string) error {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	return s.producer.Send(ctx, message)
}

// inboundFailed classifies a read error. A peer going away gets a
// best-effort ResetMessage delivered to the other side; a protocol
// error is only logged.
func (s *session) inboundFailed(ctx context.Context, err error) disposition {
	if !netutil.IsExpectedCloseError(err) {
		s.logger.Warn("ws: error", "error", err)
		return dispositionProtocolError
	}

	resetCtx, cancel := context.WithTimeout(ctx, s.resetTimeout)
	defer cancel()
	if sendErr := s.producer.Send(resetCtx, ResetMessage); sendErr != nil {
		s.logger.Warn("tx: could not send reset", "error", sendErr)
	}
	s.logger.Info("ws: closed", "code", netutil.CloseCode(err))
	return dispositionClosed
}
