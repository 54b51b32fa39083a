// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"net/http"
	"strings"

	"github.com/bureau-foundation/rendezvous/lib/codec"
	"github.com/bureau-foundation/rendezvous/lib/mailbox"
	"github.com/bureau-foundation/rendezvous/lib/version"
)

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Registry mailbox.Stats `json:"registry" cbor:"registry"`
	Build    version.Build `json:"build" cbor:"build"`
}

func (s *Server) status(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	s.respond(w, r, http.StatusOK, StatusResponse{
		Registry: s.registry.Stats(),
		Build:    version.Current(),
	})
}

func (s *Server) mailboxStatus(w http.ResponseWriter, r *http.Request, params map[string]string) {
	status, ok := s.registry.Status(params["id"])
	if !ok {
		s.renderError(w, http.StatusNotFound, "no such mailbox")
		return
	}
	s.respond(w, r, http.StatusOK, status)
}

// respond writes value as CBOR if the client asked for it, JSON
// otherwise.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, value any) {
	if !wantsCBOR(r) {
		if err := s.render.JSON(w, status, value); err != nil {
			s.logger.Warn("writing status response failed", "error", err)
		}
		return
	}

	data, err := codec.Marshal(value)
	if err != nil {
		s.logger.Error("encoding status as CBOR failed", "error", err)
		s.renderError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.Header().Set("Content-Type", codec.ContentType)
	if err := s.render.Data(w, status, data); err != nil {
		s.logger.Warn("writing status response failed", "error", err)
	}
}

func wantsCBOR(r *http.Request) bool {
	for _, accept := range r.Header.Values("Accept") {
		for _, part := range strings.Split(accept, ",") {
			mediaType, _, _ := strings.Cut(strings.TrimSpace(part), ";")
			if strings.EqualFold(strings.TrimSpace(mediaType), codec.ContentType) {
				return true
			}
		}
	}
	return false
}
