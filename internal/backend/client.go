// Package backend provides a typed HTTP client for the remote sign-language
// detection backend. All detection intelligence lives on the backend; this
// client only moves requests and responses across the wire.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/xerrors"
)

// ErrNoFrame is returned when the backend has no frame to serve yet.
var ErrNoFrame = errors.New("no frame available")

// ErrNoPrediction is returned when the backend has no current detection.
var ErrNoPrediction = errors.New("no prediction available")

// DefaultTimeout bounds a single backend request when no timeout is given.
const DefaultTimeout = 5 * time.Second

// Client talks to the detection backend over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
}

// New creates a Client for the backend at baseURL. A non-positive timeout
// falls back to DefaultTimeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tracer:  otel.Tracer("github.com/mvasquez/signboard/internal/backend"),
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// StartStream asks the backend to start the detection camera stream.
func (c *Client) StartStream(ctx context.Context) (*StreamAck, error) {
	var ack StreamAck
	if err := c.postJSON(ctx, "/start_stream", nil, &ack); err != nil {
		return nil, xerrors.Errorf("start stream: %w", err)
	}
	return &ack, nil
}

// StopStream asks the backend to stop the detection camera stream.
func (c *Client) StopStream(ctx context.Context) (*StreamAck, error) {
	var ack StreamAck
	if err := c.postJSON(ctx, "/stop_stream", nil, &ack); err != nil {
		return nil, xerrors.Errorf("stop stream: %w", err)
	}
	return &ack, nil
}

// Frame fetches the latest processed JPEG frame. It returns ErrNoFrame
// when the backend has not produced a frame yet.
func (c *Client) Frame(ctx context.Context) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, "/video_feed", nil)
	if err != nil {
		return nil, xerrors.Errorf("fetch frame: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNoFrame
	}
	if err := checkStatus(resp); err != nil {
		return nil, xerrors.Errorf("fetch frame: %w", err)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, xerrors.Errorf("read frame body: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoFrame
	}
	return data, nil
}

// Predictions fetches the current best detection. It returns
// ErrNoPrediction when the backend reports no detections (a 204 response
// or a message-only body).
func (c *Client) Predictions(ctx context.Context) (*PredictionResult, error) {
	resp, err := c.do(ctx, http.MethodGet, "/predictions", nil)
	if err != nil {
		return nil, xerrors.Errorf("fetch predictions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, ErrNoPrediction
	}
	if err := checkStatus(resp); err != nil {
		return nil, xerrors.Errorf("fetch predictions: %w", err)
	}

	var envelope predictionEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, xerrors.Errorf("decode predictions: %w", err)
	}
	if envelope.Sign == "" {
		return nil, ErrNoPrediction
	}

	result := envelope.PredictionResult
	return &result, nil
}

// SetThreshold updates the backend confidence threshold and returns the
// settings the backend reports after the change.
func (c *Client) SetThreshold(ctx context.Context, threshold float64) (*Settings, error) {
	var reply updateResponse
	if err := c.postJSON(ctx, "/threshold", thresholdRequest{Threshold: threshold}, &reply); err != nil {
		return nil, xerrors.Errorf("set threshold: %w", err)
	}
	if !reply.Success {
		return nil, xerrors.Errorf("set threshold rejected: %s", reply.Error)
	}
	return &reply.CurrentSettings, nil
}

// SetZoom updates the backend camera zoom factor and returns the settings
// the backend reports after the change.
func (c *Client) SetZoom(ctx context.Context, factor float64) (*Settings, error) {
	var reply updateResponse
	if err := c.postJSON(ctx, "/zoom", zoomRequest{ZoomFactor: factor}, &reply); err != nil {
		return nil, xerrors.Errorf("set zoom: %w", err)
	}
	if !reply.Success {
		return nil, xerrors.Errorf("set zoom rejected: %s", reply.Error)
	}
	return &reply.CurrentSettings, nil
}

// Status fetches the backend's streaming status snapshot.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	var status Status
	if err := c.getJSON(ctx, "/status", &status); err != nil {
		return nil, xerrors.Errorf("fetch status: %w", err)
	}
	return &status, nil
}

// CameraInfo fetches detailed camera diagnostics.
func (c *Client) CameraInfo(ctx context.Context) (*CameraInfo, error) {
	var info CameraInfo
	if err := c.getJSON(ctx, "/camera/info", &info); err != nil {
		return nil, xerrors.Errorf("fetch camera info: %w", err)
	}
	return &info, nil
}

// Health fetches the backend health check.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var health Health
	if err := c.getJSON(ctx, "/health", &health); err != nil {
		return nil, xerrors.Errorf("fetch health: %w", err)
	}
	return &health, nil
}

// do performs a single backend request wrapped in a client span.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	ctx, span := c.tracer.Start(ctx, "backend "+method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.path", path),
		),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	return resp, nil
}

// getJSON performs a GET and decodes a 2xx JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// postJSON performs a POST with an optional JSON body and decodes a 2xx
// JSON response into out.
func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	resp, err := c.do(ctx, http.MethodPost, path, reader)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// checkStatus converts a non-2xx response into an error carrying a short
// slice of the response body.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	return xerrors.Errorf("backend returned %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
}
