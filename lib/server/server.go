// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/dimfeld/httptreemux"
	"github.com/gorilla/handlers"
	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzhttp"
	"github.com/unrolled/render"

	"github.com/bureau-foundation/rendezvous/lib/assets"
	"github.com/bureau-foundation/rendezvous/lib/mailbox"
	"github.com/bureau-foundation/rendezvous/lib/relay"
)

// roleRoutes are the path prefixes that select a role. Each one gets
// a mailbox route and a client page.
var roleRoutes = []string{"initiator", "responder", "alice", "bob"}

// Options configures a Server.
type Options struct {
	// Relay serves upgraded connections. Required.
	Relay *relay.Handler

	// Registry backs the status endpoints. Required.
	Registry *mailbox.Registry

	// Assets is the client bundle. Required.
	Assets *assets.Bundle

	// Logger is the structured logger. Required.
	Logger *slog.Logger

	// AllowedOrigins lists Origin header values accepted on upgrade.
	// "*" accepts any origin. Requests without an Origin header and
	// same-origin requests are always accepted.
	AllowedOrigins []string

	// MaxMessageBytes is the read limit on upgraded connections.
	// Zero means no limit.
	MaxMessageBytes int64

	// TrustProxyHeaders enables X-Forwarded-For handling.
	TrustProxyHeaders bool
}

// Server is the relay's http.Handler.
type Server struct {
	relay    *relay.Handler
	registry *mailbox.Registry
	assets   *assets.Bundle
	logger   *slog.Logger
	render   *render.Render

	upgrader        websocket.Upgrader
	maxMessageBytes int64

	handler http.Handler
}

// New builds the router and middleware chain.
func New(options Options) *Server {
	if options.Relay == nil {
		panic("server.Server: Relay is required")
	}
	if options.Registry == nil {
		panic("server.Server: Registry is required")
	}
	if options.Assets == nil {
		panic("server.Server: Assets is required")
	}
	if options.Logger == nil {
		panic("server.Server: Logger is required")
	}

	s := &Server{
		relay:           options.Relay,
		registry:        options.Registry,
		assets:          options.Assets,
		logger:          options.Logger,
		render:          render.New(),
		maxMessageBytes: options.MaxMessageBytes,
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: originChecker(options.AllowedOrigins),
		Error:       s.upgradeError,
	}

	var handler http.Handler = s.router()
	handler = handlers.CustomLoggingHandler(io.Discard, handler, accessLogFormatter(s.logger))
	if options.TrustProxyHeaders {
		handler = handlers.ProxyHeaders(handler)
	}
	s.handler = handler
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) router() *httptreemux.TreeMux {
	router := httptreemux.New()

	for _, name := range roleRoutes {
		role, err := mailbox.ParseRole(name)
		if err != nil {
			panic("server: unroutable role " + name)
		}
		router.GET("/"+name+"/mailbox/:id", s.relayMailbox(role))
		router.GET("/"+name, s.asset("app.html"))
	}
	router.GET("/", s.asset("index.html"))
	router.GET("/status", s.status)
	router.GET("/status/:id", s.mailboxStatus)
	router.GET("/*file", s.file())

	s.registerHandlers(router)
	return router
}

func (s *Server) registerHandlers(router *httptreemux.TreeMux) {
	router.MethodNotAllowedHandler = func(w http.ResponseWriter, r *http.Request, methods map[string]httptreemux.HandlerFunc) {
		for method := range methods {
			w.Header().Add("Allow", method)
		}
		s.renderError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
	router.NotFoundHandler = func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, http.StatusNotFound, "not found")
	}
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, recovered interface{}) {
		s.logger.Error("handler panic",
			"method", r.Method,
			"path", r.URL.Path,
			"panic", recovered,
			"stack", string(debug.Stack()),
		)
		s.renderError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (s *Server) renderError(w http.ResponseWriter, status int, message string) {
	if err := s.render.JSON(w, status, map[string]string{"error": message}); err != nil {
		s.logger.Warn("writing error response failed", "error", err)
	}
}

// asset serves one fixed file.
func (s *Server) asset(name string) httptreemux.HandlerFunc {
	handler := gzhttp.GzipHandler(s.assets.Handler(name))
	return func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		handler.ServeHTTP(w, r)
	}
}

// file serves whatever asset the request path names.
func (s *Server) file() httptreemux.HandlerFunc {
	handler := gzhttp.GzipHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.assets.Serve(w, r, r.URL.Path)
	}))
	return func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		handler.ServeHTTP(w, r)
	}
}
