// Package server exposes the chat services over HTTP: JSON mutations and a
// server-sent events stream per user.
package server

import (
	"chat-rooms/contract"
	"chat-rooms/observability"
	"chat-rooms/services"
	"chat-rooms/stream"
	"context"
	"log/slog"
	"net/http"
	"time"
)

const maxBodyBytes = 64 << 10

type Server struct {
	log      *slog.Logger
	auth     services.IAuthService
	chat     services.IChatService
	streams  *stream.Server
	bus      contract.IEventBus
	monitor  *observability.Monitor
	shutdown context.Context
}

// NewServer builds the handlers. Streams end when shutdown is done, since
// http.Server.Shutdown does not cancel requests that are still running.
func NewServer(
	shutdown context.Context,
	log *slog.Logger,
	authService services.IAuthService,
	chatService services.IChatService,
	streams *stream.Server,
	bus contract.IEventBus,
	monitor *observability.Monitor,
) *Server {
	return &Server{
		log:      log,
		auth:     authService,
		chat:     chatService,
		streams:  streams,
		bus:      bus,
		monitor:  monitor,
		shutdown: shutdown,
	}
}

// Routes returns the HTTP routes of the chat API.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /user", s.handleRegister)
	mux.HandleFunc("GET /user/{userId}", s.handleGetUser)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("POST /room", s.handleCreateRoom)
	mux.HandleFunc("POST /message", s.handlePostMessage)
	mux.HandleFunc("POST /invite", s.handleInvite)
	mux.HandleFunc("GET /events/{userId}", s.handleEvents)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /debug/stats", s.handleStats)
	return mux
}

// NewHTTPServer applies production timeouts. The stream handler lifts the
// write deadline for its own connection.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
