package backend

// Settings mirrors the detection backend's tunable stream configuration.
type Settings struct {
	ConfidenceThreshold float64 `json:"confidence_threshold"`
	ZoomFactor          float64 `json:"zoom_factor"`
}

// DefaultSettings returns the backend's documented defaults.
func DefaultSettings() Settings {
	return Settings{
		ConfidenceThreshold: 0.5,
		ZoomFactor:          1.0,
	}
}

// Detection is a single raw detection from the model output.
type Detection struct {
	Letter     string  `json:"letter"`
	Confidence float64 `json:"confidence"`
}

// PredictionResult is the payload returned by the predictions endpoint.
// Sign and Confidence describe the best detection of the current frame.
type PredictionResult struct {
	Sign          string      `json:"sign"`
	Confidence    float64     `json:"confidence"`
	AllDetections []Detection `json:"all_detections"`
}

// CameraInfo reports backend camera diagnostics. Width, Height and FPS are
// only present while the capture device is open.
type CameraInfo struct {
	Running     bool    `json:"running"`
	HasFrame    bool    `json:"has_frame"`
	ThreadAlive bool    `json:"thread_alive"`
	Width       int     `json:"width,omitempty"`
	Height      int     `json:"height,omitempty"`
	FPS         float64 `json:"fps,omitempty"`
}

// Status is the backend's periodic status snapshot.
type Status struct {
	Streaming         bool       `json:"streaming"`
	CurrentDetections int        `json:"current_detections"`
	ModelType         string     `json:"model_type"`
	Settings          Settings   `json:"settings"`
	CameraInfo        CameraInfo `json:"camera_info"`
}

// Health is the backend health check response.
type Health struct {
	Status          string `json:"status"`
	DetectorLoaded  bool   `json:"detector_loaded"`
	CameraAvailable bool   `json:"camera_available"`
	Streaming       bool   `json:"streaming"`
}

// StreamAck acknowledges a start or stop command. Settings is populated
// on start so the client can seed its local copy.
type StreamAck struct {
	Message  string    `json:"message"`
	Settings *Settings `json:"settings,omitempty"`
}

// thresholdRequest is the body of a threshold update.
type thresholdRequest struct {
	Threshold float64 `json:"threshold"`
}

// zoomRequest is the body of a zoom update.
type zoomRequest struct {
	ZoomFactor float64 `json:"zoom_factor"`
}

// updateResponse is the backend's reply to threshold and zoom updates.
type updateResponse struct {
	Success         bool     `json:"success"`
	Message         string   `json:"message"`
	Error           string   `json:"error"`
	CurrentSettings Settings `json:"current_settings"`
}

// predictionEnvelope wraps PredictionResult with the message field the
// backend uses when no detections are available.
type predictionEnvelope struct {
	PredictionResult
	Message string `json:"message"`
}
