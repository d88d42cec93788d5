// Package server provides the HTTP server for the Signboard dashboard.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mvasquez/signboard/internal/backend"
	"github.com/mvasquez/signboard/internal/server/api"
	"github.com/mvasquez/signboard/internal/session"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Manager   *session.Manager
	Backend   *backend.Client
}

// Server represents the HTTP server for the Signboard dashboard.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.Handle("/api/health", withCORS(http.HandlerFunc(s.handleHealth)))

	// Register session API handlers if a Manager is configured
	if s.config.Manager != nil {
		m := s.config.Manager

		s.mux.Handle("/api/state", withCORS(api.NewStateHandler(m)))
		s.mux.Handle("/api/detection/", withCORS(api.NewDetectionHandler(m)))
		s.mux.Handle("/api/history", withCORS(api.NewHistoryHandler(m)))

		settingsHandler := withCORS(api.NewSettingsHandler(m))
		s.mux.Handle("/api/settings", settingsHandler)
		s.mux.Handle("/api/settings/", settingsHandler)

		toastsHandler := withCORS(api.NewToastsHandler(m))
		s.mux.Handle("/api/toasts", toastsHandler)
		s.mux.Handle("/api/toasts/", toastsHandler)

		s.mux.Handle("/api/frame", withCORS(NewFrameHandler(m)))
		s.mux.Handle("/api/stream", NewStreamHandler(m))
		s.mux.Handle("/api/ws", NewStateFeedHandler(m))
	}

	// Serve static dashboard assets if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// withCORS adds permissive CORS headers so the dashboard can be served
// from a separate origin during development.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// healthResponse is the body of GET /api/health.
type healthResponse struct {
	Status           string          `json:"status"`
	Uptime           string          `json:"uptime"`
	BackendReachable bool            `json:"backend_reachable"`
	Backend          *backend.Health `json:"backend,omitempty"`
}

// handleHealth handles GET requests to /api/health. It reports dashboard
// uptime and probes the detection backend when one is configured.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := healthResponse{
		Status: "ok",
		Uptime: time.Since(s.start).String(),
	}

	if s.config.Backend != nil {
		if health, err := s.config.Backend.Health(r.Context()); err == nil {
			response.BackendReachable = true
			response.Backend = health
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
