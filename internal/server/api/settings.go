package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mvasquez/signboard/internal/backend"
	"github.com/mvasquez/signboard/internal/session"
)

// SettingsHandler manages the local settings draft and its explicit save.
type SettingsHandler struct {
	manager *session.Manager
}

// NewSettingsHandler creates a new SettingsHandler with the given manager.
func NewSettingsHandler(m *session.Manager) *SettingsHandler {
	return &SettingsHandler{manager: m}
}

type settingsResponse struct {
	Draft     backend.Settings `json:"draft"`
	Committed backend.Settings `json:"committed"`
}

type updateDraftRequest struct {
	ConfidenceThreshold float64 `json:"confidence_threshold"`
	ZoomFactor          float64 `json:"zoom_factor"`
}

// ServeHTTP routes settings requests.
// Expected paths: /api/settings (GET draft+committed, PUT update draft)
// and /api/settings/save (POST commit the draft to the backend).
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasSuffix(r.URL.Path, "/save") {
		h.save(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.updateDraft(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// get handles GET /api/settings.
func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, settingsResponse{
		Draft:     h.manager.Draft(),
		Committed: h.manager.Committed(),
	})
}

// updateDraft handles PUT /api/settings and stores a validated draft.
func (h *SettingsHandler) updateDraft(w http.ResponseWriter, r *http.Request) {
	var req updateDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	draft := backend.Settings{
		ConfidenceThreshold: req.ConfidenceThreshold,
		ZoomFactor:          req.ZoomFactor,
	}
	if err := h.manager.SetDraft(draft); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, settingsResponse{
		Draft:     h.manager.Draft(),
		Committed: h.manager.Committed(),
	})
}

// save handles POST /api/settings/save and commits the draft.
func (h *SettingsHandler) save(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	saved, err := h.manager.SaveSettings(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to save settings")
		return
	}

	writeJSON(w, http.StatusOK, settingsResponse{
		Draft:     saved,
		Committed: saved,
	})
}
