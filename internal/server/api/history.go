package api

import (
	"net/http"

	"github.com/mvasquez/signboard/internal/session"
)

// HistoryHandler serves and clears the prediction history.
type HistoryHandler struct {
	manager *session.Manager
}

// NewHistoryHandler creates a new HistoryHandler with the given manager.
func NewHistoryHandler(m *session.Manager) *HistoryHandler {
	return &HistoryHandler{manager: m}
}

type historyResponse struct {
	History []session.Prediction `json:"history"`
}

// ServeHTTP handles GET and DELETE requests to /api/history.
func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, historyResponse{History: h.manager.History()})
	case http.MethodDelete:
		h.manager.ClearHistory()
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
