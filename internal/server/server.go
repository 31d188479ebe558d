// Package server provides an optional status HTTP server: a health
// endpoint, the latest snapshot, and a WebSocket feed of emitted events.
// The server registers with the dispatcher like any other consumer.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/event"
)

// Server serves pipeline status over HTTP and fans emitted snapshots out
// to WebSocket clients.
type Server struct {
	httpServer *http.Server
	events     *eventsHandler
	start      time.Time

	mu     sync.RWMutex
	latest event.Snapshot
	seen   bool
}

// New creates a Server listening on addr once Start is called.
func New(addr string) *Server {
	s := &Server{
		events: newEventsHandler(),
		start:  time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/snapshot", s.handleSnapshot)
	mux.Handle("/api/events", s.events)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// Start begins serving in the background. It returns the listener error
// if the address cannot be bound; errors after a successful start end the
// serve loop silently when the server is closed.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			// The serve loop ends on Close; anything else is logged by
			// net/http itself via the default error logger.
			_ = err
		}
	}()
	return nil
}

// Accept stores the latest snapshot and pushes it to connected WebSocket
// clients. Broadcast writes use short deadlines, so a stuck client cannot
// hold up the delivery worker for long.
func (s *Server) Accept(_ context.Context, snap event.Snapshot) error {
	s.mu.Lock()
	s.latest = snap
	s.seen = true
	s.mu.Unlock()

	return s.events.broadcast(snap)
}

// Close stops the HTTP server and disconnects WebSocket clients.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	s.events.closeAll()
	return s.httpServer.Shutdown(ctx)
}

// Name identifies the consumer in dispatcher logs.
func (s *Server) Name() string {
	return "server"
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// handleSnapshot serves the most recently emitted snapshot.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	snap, seen := s.latest, s.seen
	s.mu.RUnlock()

	if !seen {
		http.Error(w, "No snapshot yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
