package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDetectionHandler_Start(t *testing.T) {
	m, fake := newTestManager(t)
	handler := NewDetectionHandler(m)

	req := httptest.NewRequest(http.MethodPost, "/api/detection/start", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var response detectionResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !response.Detecting {
		t.Error("Detecting = false, want true after start")
	}
	if !fake.Streaming() {
		t.Error("backend not streaming after start")
	}
}

func TestDetectionHandler_Stop(t *testing.T) {
	m, fake := newTestManager(t)
	handler := NewDetectionHandler(m)

	startReq := httptest.NewRequest(http.MethodPost, "/api/detection/start", nil)
	handler.ServeHTTP(httptest.NewRecorder(), startReq)

	req := httptest.NewRequest(http.MethodPost, "/api/detection/stop", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var response detectionResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Detecting {
		t.Error("Detecting = true, want false after stop")
	}
	if fake.Streaming() {
		t.Error("backend still streaming after stop")
	}
}

func TestDetectionHandler_StartFailure(t *testing.T) {
	m, fake := newTestManager(t)
	fake.Fail("start", true)
	handler := NewDetectionHandler(m)

	req := httptest.NewRequest(http.MethodPost, "/api/detection/start", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadGateway)
	}
}

func TestDetectionHandler_UnknownAction(t *testing.T) {
	m, _ := newTestManager(t)
	handler := NewDetectionHandler(m)

	req := httptest.NewRequest(http.MethodPost, "/api/detection/pause", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestDetectionHandler_MethodNotAllowed(t *testing.T) {
	m, _ := newTestManager(t)
	handler := NewDetectionHandler(m)

	req := httptest.NewRequest(http.MethodGet, "/api/detection/start", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}
