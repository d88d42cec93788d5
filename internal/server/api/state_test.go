package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mvasquez/signboard/internal/session"
)

func TestStateHandler_Get(t *testing.T) {
	m, _ := newTestManager(t)
	handler := NewStateHandler(m)

	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	contentType := rec.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", contentType)
	}

	var state session.State
	if err := json.NewDecoder(rec.Body).Decode(&state); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if state.Detecting {
		t.Error("Detecting = true, want false before start")
	}
	if state.Current != nil {
		t.Errorf("Current = %+v, want nil before any poll", state.Current)
	}
	if state.Draft.ConfidenceThreshold != 0.5 {
		t.Errorf("Draft.ConfidenceThreshold = %v, want 0.5", state.Draft.ConfidenceThreshold)
	}
}

func TestStateHandler_MethodNotAllowed(t *testing.T) {
	m, _ := newTestManager(t)
	handler := NewStateHandler(m)

	req := httptest.NewRequest(http.MethodPost, "/api/state", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}
