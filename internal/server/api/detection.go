package api

import (
	"net/http"
	"strings"

	"github.com/mvasquez/signboard/internal/session"
)

// DetectionHandler forwards start/stop commands to the session manager.
type DetectionHandler struct {
	manager *session.Manager
}

// NewDetectionHandler creates a new DetectionHandler with the given manager.
func NewDetectionHandler(m *session.Manager) *DetectionHandler {
	return &DetectionHandler{manager: m}
}

type detectionResponse struct {
	Detecting bool `json:"detecting"`
}

// ServeHTTP routes POST /api/detection/start and /api/detection/stop.
func (h *DetectionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	action := strings.TrimPrefix(r.URL.Path, "/api/detection/")
	switch action {
	case "start":
		if err := h.manager.StartDetection(r.Context()); err != nil {
			writeError(w, http.StatusBadGateway, "Failed to start detection")
			return
		}
	case "stop":
		if err := h.manager.StopDetection(r.Context()); err != nil {
			writeError(w, http.StatusBadGateway, "Failed to stop detection")
			return
		}
	default:
		writeError(w, http.StatusNotFound, "Unknown detection action")
		return
	}

	writeJSON(w, http.StatusOK, detectionResponse{Detecting: h.manager.Detecting()})
}
