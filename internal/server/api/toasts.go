package api

import (
	"net/http"
	"strings"

	"github.com/mvasquez/signboard/internal/session"
)

// ToastsHandler serves and dismisses transient notifications.
type ToastsHandler struct {
	manager *session.Manager
}

// NewToastsHandler creates a new ToastsHandler with the given manager.
func NewToastsHandler(m *session.Manager) *ToastsHandler {
	return &ToastsHandler{manager: m}
}

type toastsResponse struct {
	Toasts []session.Toast `json:"toasts"`
}

// ServeHTTP routes toast requests.
// Expected paths: /api/toasts (GET) and /api/toasts/{id} (DELETE).
func (h *ToastsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/toasts")
	id = strings.TrimPrefix(id, "/")

	if id == "" {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		writeJSON(w, http.StatusOK, toastsResponse{Toasts: h.manager.Toasts()})
		return
	}

	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !h.manager.DismissToast(id) {
		writeError(w, http.StatusNotFound, "Toast not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
