package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mvasquez/signboard/internal/lgr"
	"github.com/mvasquez/signboard/internal/session"
)

// feedInterval paces the WebSocket state broadcast.
const feedInterval = 250 * time.Millisecond

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// StateFeedHandler broadcasts session state snapshots via WebSocket.
type StateFeedHandler struct {
	manager *session.Manager
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

// NewStateFeedHandler creates a new StateFeedHandler with the given manager.
func NewStateFeedHandler(m *session.Manager) *StateFeedHandler {
	h := &StateFeedHandler{
		manager: m,
		clients: make(map[*websocket.Conn]bool),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *StateFeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		lgr.Logger.Error("websocket upgrade failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// broadcast sends state snapshots to all connected clients.
func (h *StateFeedHandler) broadcast() {
	ticker := time.NewTicker(feedInterval)
	defer ticker.Stop()

	for range ticker.C {
		h.mu.RLock()
		if len(h.clients) == 0 {
			h.mu.RUnlock()
			continue
		}
		h.mu.RUnlock()

		msg, err := json.Marshal(h.manager.Snapshot())
		if err != nil {
			continue
		}

		h.mu.RLock()
		for conn := range h.clients {
			conn.WriteMessage(websocket.TextMessage, msg)
		}
		h.mu.RUnlock()
	}
}
