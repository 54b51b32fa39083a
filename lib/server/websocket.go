// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/dimfeld/httptreemux"

	"github.com/bureau-foundation/rendezvous/lib/mailbox"
)

// relayMailbox upgrades the request and hands the connection to the relay.
// The relay runs on this handler goroutine and owns the connection
// from here on.
func (s *Server) relayMailbox(role mailbox.Role) httptreemux.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, params map[string]string) {
		id := params["id"]
		if id == "" {
			s.renderError(w, http.StatusNotFound, "mailbox id is required")
			return
		}

		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			// The upgrader has already answered via upgradeError.
			s.logger.Debug("websocket upgrade failed",
				"mailbox", id,
				"role", role.String(),
				"error", err,
			)
			return
		}
		if s.maxMessageBytes > 0 {
			conn.SetReadLimit(s.maxMessageBytes)
		}

		s.relay.Serve(r.Context(), conn, role, id)
	}
}

func (s *Server) upgradeError(w http.ResponseWriter, r *http.Request, status int, reason error) {
	s.renderError(w, status, reason.Error())
}

// originChecker returns a CheckOrigin function for the allowed list.
func originChecker(allowed []string) func(*http.Request) bool {
	anyOrigin := false
	set := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			anyOrigin = true
		}
		set[strings.ToLower(strings.TrimSuffix(origin, "/"))] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if anyOrigin || origin == "" {
			return true
		}
		if set[strings.ToLower(origin)] {
			return true
		}
		parsed, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(parsed.Host, r.Host)
	}
}
