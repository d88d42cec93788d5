package server

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/mvasquez/signboard/internal/session"
)

// streamFrameInterval paces the MJPEG re-stream at roughly 15 FPS.
const streamFrameInterval = 66 * time.Millisecond

// FrameHandler serves the most recent JPEG frame held by the session.
type FrameHandler struct {
	manager *session.Manager
}

// NewFrameHandler creates a new FrameHandler with the given manager.
func NewFrameHandler(m *session.Manager) *FrameHandler {
	return &FrameHandler{manager: m}
}

// ServeHTTP writes the latest frame, or 404 when none is held.
func (h *FrameHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	frame := h.manager.Frame()
	if len(frame) == 0 {
		http.Error(w, "No frame available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(frame)
}

// StreamHandler re-streams the held frames as MJPEG.
type StreamHandler struct {
	manager *session.Manager
}

// NewStreamHandler creates a new StreamHandler with the given manager.
func NewStreamHandler(m *session.Manager) *StreamHandler {
	return &StreamHandler{manager: m}
}

// ServeHTTP streams MJPEG frames to connected clients until they hang up.
// Frames identical to the previously sent one are skipped.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var last []byte
	for {
		select {
		case <-r.Context().Done():
			return
		default:
		}

		frame := h.manager.Frame()
		if len(frame) == 0 || bytes.Equal(frame, last) {
			time.Sleep(streamFrameInterval)
			continue
		}
		last = frame

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(frame))
		w.Write(frame)
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}

		time.Sleep(streamFrameInterval)
	}
}
