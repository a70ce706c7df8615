// Package server exposes the game arena over websockets. Clients send
// JSON command frames and receive direct replies plus pushed game
// notifications and per-player views.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server serves the websocket endpoint and a health check over HTTP.
type Server struct {
	logger *zap.Logger
	hub    *Hub
	http   *http.Server
}

// New builds a server listening on addr. The hub's run loop must be
// started separately.
func New(logger *zap.Logger, hub *Hub, addr string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{logger: logger, hub: hub}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.HandleFunc("/healthz", s.handleHealth)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the route table, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start serves connections until Shutdown or a listener error.
func (s *Server) Start() error {
	s.logger.Info("websocket server listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and drains within ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
