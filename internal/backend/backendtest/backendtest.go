// Package backendtest provides a scripted in-memory detection backend for
// tests. It mimics the REST surface of the real backend: stream start/stop,
// frame and prediction fetches, threshold/zoom updates, status and health.
package backendtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/mvasquez/signboard/internal/backend"
)

// Backend is a fake detection backend served over httptest.
type Backend struct {
	srv *httptest.Server

	mu         sync.Mutex
	streaming  bool
	frame      []byte
	prediction *backend.PredictionResult
	settings   backend.Settings

	// Failure switches; when set the matching endpoint returns 500.
	failStart       bool
	failStop        bool
	failFrame       bool
	failPredictions bool
	failThreshold   bool
	failZoom        bool
	failStatus      bool

	// messageOnEmpty makes /predictions answer with a message body instead
	// of 204 when no prediction is scripted, matching the older backend.
	messageOnEmpty bool

	// holds block the matching endpoint until released, for tests that
	// need a request caught in flight.
	holds map[string]chan struct{}

	startCalls      int
	stopCalls       int
	frameCalls      int
	predictionCalls int
	thresholdCalls  int
	zoomCalls       int
}

// New starts a fake backend and registers its shutdown with t.Cleanup.
func New(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{
		settings: backend.DefaultSettings(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/start_stream", b.handleStart)
	mux.HandleFunc("/stop_stream", b.handleStop)
	mux.HandleFunc("/video_feed", b.handleFrame)
	mux.HandleFunc("/predictions", b.handlePredictions)
	mux.HandleFunc("/threshold", b.handleThreshold)
	mux.HandleFunc("/zoom", b.handleZoom)
	mux.HandleFunc("/status", b.handleStatus)
	mux.HandleFunc("/camera/info", b.handleCameraInfo)
	mux.HandleFunc("/health", b.handleHealth)

	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)

	return b
}

// URL returns the fake backend base URL.
func (b *Backend) URL() string {
	return b.srv.URL
}

// SetFrame scripts the frame served by /video_feed. A nil frame makes the
// endpoint answer 404.
func (b *Backend) SetFrame(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frame = data
}

// SetPrediction scripts the detection served by /predictions.
func (b *Backend) SetPrediction(sign string, confidence float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.prediction = &backend.PredictionResult{
		Sign:       sign,
		Confidence: confidence,
		AllDetections: []backend.Detection{
			{Letter: sign, Confidence: confidence},
		},
	}
}

// ClearPrediction removes any scripted detection.
func (b *Backend) ClearPrediction() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.prediction = nil
}

// SetMessageOnEmpty switches the empty-predictions reply between a 204 and
// a message-only JSON body.
func (b *Backend) SetMessageOnEmpty(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messageOnEmpty = v
}

// Fail flips failure switches by endpoint name: "start", "stop", "frame",
// "predictions", "threshold", "zoom", "status".
func (b *Backend) Fail(endpoint string, v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch endpoint {
	case "start":
		b.failStart = v
	case "stop":
		b.failStop = v
	case "frame":
		b.failFrame = v
	case "predictions":
		b.failPredictions = v
	case "threshold":
		b.failThreshold = v
	case "zoom":
		b.failZoom = v
	case "status":
		b.failStatus = v
	}
}

// Hold blocks the named endpoint ("frame" or "predictions") until the
// returned release function is called. Release is safe to call twice.
func (b *Backend) Hold(endpoint string) (release func()) {
	ch := make(chan struct{})

	b.mu.Lock()
	if b.holds == nil {
		b.holds = make(map[string]chan struct{})
	}
	b.holds[endpoint] = ch
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { close(ch) })
	}
}

// waitHold parks the calling handler on the endpoint's hold, when one is set.
func (b *Backend) waitHold(endpoint string) {
	b.mu.Lock()
	ch := b.holds[endpoint]
	b.mu.Unlock()

	if ch != nil {
		<-ch
	}
}

// Streaming reports whether the fake stream is running.
func (b *Backend) Streaming() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.streaming
}

// Settings returns the last settings accepted by the fake backend.
func (b *Backend) Settings() backend.Settings {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.settings
}

// Calls returns how many times the named endpoint was hit: "start",
// "stop", "frame", "predictions", "threshold" or "zoom".
func (b *Backend) Calls(endpoint string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch endpoint {
	case "start":
		return b.startCalls
	case "stop":
		return b.stopCalls
	case "frame":
		return b.frameCalls
	case "predictions":
		return b.predictionCalls
	case "threshold":
		return b.thresholdCalls
	case "zoom":
		return b.zoomCalls
	}
	return 0
}

func (b *Backend) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	b.mu.Lock()
	b.startCalls++
	if b.failStart {
		b.mu.Unlock()
		http.Error(w, "Failed to start camera", http.StatusInternalServerError)
		return
	}
	b.streaming = true
	settings := b.settings
	b.mu.Unlock()

	writeJSON(w, backend.StreamAck{
		Message:  "detection stream started",
		Settings: &settings,
	})
}

func (b *Backend) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	b.mu.Lock()
	b.stopCalls++
	if b.failStop {
		b.mu.Unlock()
		http.Error(w, "Failed to stop camera", http.StatusInternalServerError)
		return
	}
	b.streaming = false
	b.prediction = nil
	b.mu.Unlock()

	writeJSON(w, backend.StreamAck{Message: "detection stream stopped"})
}

func (b *Backend) handleFrame(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.frameCalls++
	b.mu.Unlock()

	b.waitHold("frame")

	b.mu.Lock()
	fail := b.failFrame
	frame := b.frame
	b.mu.Unlock()

	if fail {
		http.Error(w, "camera error", http.StatusInternalServerError)
		return
	}
	if frame == nil {
		http.Error(w, "No frame available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Write(frame)
}

func (b *Backend) handlePredictions(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.predictionCalls++
	b.mu.Unlock()

	b.waitHold("predictions")

	b.mu.Lock()
	fail := b.failPredictions
	prediction := b.prediction
	messageOnEmpty := b.messageOnEmpty
	b.mu.Unlock()

	if fail {
		http.Error(w, "inference error", http.StatusInternalServerError)
		return
	}
	if prediction == nil {
		if messageOnEmpty {
			writeJSON(w, map[string]string{"message": "No detections available"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, prediction)
}

func (b *Backend) handleThreshold(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Threshold float64 `json:"threshold"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	b.thresholdCalls++
	if b.failThreshold {
		b.mu.Unlock()
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if req.Threshold < 0 || req.Threshold > 1 {
		b.mu.Unlock()
		writeJSON(w, map[string]any{
			"success": false,
			"error":   "Threshold must be between 0 and 1",
		})
		return
	}
	b.settings.ConfidenceThreshold = req.Threshold
	settings := b.settings
	b.mu.Unlock()

	writeJSON(w, map[string]any{
		"success":          true,
		"message":          "Threshold updated",
		"current_settings": settings,
	})
}

func (b *Backend) handleZoom(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ZoomFactor float64 `json:"zoom_factor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	b.zoomCalls++
	if b.failZoom {
		b.mu.Unlock()
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if req.ZoomFactor <= 0 {
		b.mu.Unlock()
		writeJSON(w, map[string]any{
			"success": false,
			"error":   "Zoom factor must be greater than 0",
		})
		return
	}
	b.settings.ZoomFactor = req.ZoomFactor
	settings := b.settings
	b.mu.Unlock()

	writeJSON(w, map[string]any{
		"success":          true,
		"message":          "Zoom updated",
		"current_settings": settings,
	})
}

func (b *Backend) handleStatus(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	fail := b.failStatus
	detections := 0
	if b.prediction != nil {
		detections = len(b.prediction.AllDetections)
	}
	status := backend.Status{
		Streaming:         b.streaming,
		CurrentDetections: detections,
		ModelType:         "YOLO ASL Letters",
		Settings:          b.settings,
		CameraInfo:        b.cameraInfoLocked(),
	}
	b.mu.Unlock()

	if fail {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, status)
}

func (b *Backend) handleCameraInfo(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	info := b.cameraInfoLocked()
	b.mu.Unlock()

	writeJSON(w, info)
}

func (b *Backend) handleHealth(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	health := backend.Health{
		Status:          "healthy",
		DetectorLoaded:  true,
		CameraAvailable: true,
		Streaming:       b.streaming,
	}
	b.mu.Unlock()

	writeJSON(w, health)
}

// cameraInfoLocked builds camera diagnostics; callers must hold b.mu.
func (b *Backend) cameraInfoLocked() backend.CameraInfo {
	info := backend.CameraInfo{
		Running:     b.streaming,
		HasFrame:    b.frame != nil,
		ThreadAlive: b.streaming,
	}
	if b.streaming {
		info.Width = 640
		info.Height = 480
		info.FPS = 15
	}
	return info
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}
