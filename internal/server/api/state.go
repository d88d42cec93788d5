package api

import (
	"net/http"

	"github.com/mvasquez/signboard/internal/session"
)

// StateHandler serves the full session state snapshot.
type StateHandler struct {
	manager *session.Manager
}

// NewStateHandler creates a new StateHandler with the given manager.
func NewStateHandler(m *session.Manager) *StateHandler {
	return &StateHandler{manager: m}
}

// ServeHTTP handles GET /api/state.
func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, h.manager.Snapshot())
}
