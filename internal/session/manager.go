// Package session implements the stream session manager for the dashboard:
// timer-driven polling of the detection backend, a bounded prediction
// history, settings drafts, transient notifications, and the latest frame.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mvasquez/signboard/internal/backend"
	"github.com/mvasquez/signboard/internal/lgr"
)

// Polling defaults, matching the cadence of the original dashboard.
const (
	DefaultFramePollInterval      = 100 * time.Millisecond
	DefaultPredictionPollInterval = 500 * time.Millisecond
	DefaultStatusPollInterval     = 5 * time.Second
)

// Settings validation errors.
var (
	ErrInvalidThreshold = errors.New("confidence threshold must be between 0 and 1")
	ErrInvalidZoom      = errors.New("zoom factor must be between 1 and 2")
)

// Config holds configuration options for the session manager.
type Config struct {
	FramePollInterval      time.Duration
	PredictionPollInterval time.Duration
	StatusPollInterval     time.Duration
	HistoryLimit           int
	ToastTTL               time.Duration
}

// State is a consistent snapshot of the session for API and WebSocket
// consumers.
type State struct {
	Detecting bool             `json:"detecting"`
	Current   *Prediction      `json:"current,omitempty"`
	History   []Prediction     `json:"history"`
	Draft     backend.Settings `json:"draft"`
	Committed backend.Settings `json:"committed"`
	Status    *backend.Status  `json:"status,omitempty"`
	Toasts    []Toast          `json:"toasts"`
}

// Manager owns the client-side state of one detection session and drives
// the pollers that keep it fresh.
type Manager struct {
	client *backend.Client
	config Config

	mu           sync.RWMutex
	detecting    bool
	current      *Prediction
	history      *history
	draft        backend.Settings
	committed    backend.Settings
	status       *backend.Status
	frame        []byte
	toasts       *toastBox
	onPrediction func(sign string)
	stopCh       chan struct{}      // poller stop, non-nil while detecting
	pollCancel   context.CancelFunc // abandons in-flight poll requests on stop
	statusStop   chan struct{}      // status poller stop, non-nil after Run
}

// New creates a Manager that polls the backend through client. Zero config
// fields fall back to package defaults.
func New(client *backend.Client, config Config) *Manager {
	if config.FramePollInterval <= 0 {
		config.FramePollInterval = DefaultFramePollInterval
	}
	if config.PredictionPollInterval <= 0 {
		config.PredictionPollInterval = DefaultPredictionPollInterval
	}
	if config.StatusPollInterval <= 0 {
		config.StatusPollInterval = DefaultStatusPollInterval
	}

	settings := backend.DefaultSettings()

	return &Manager{
		client:    client,
		config:    config,
		history:   newHistory(config.HistoryLimit),
		draft:     settings,
		committed: settings,
		toasts:    newToastBox(config.ToastTTL),
	}
}

// Run starts the status poller. It refreshes backend status for the
// lifetime of the manager, regardless of detection state.
func (m *Manager) Run() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.statusStop != nil {
		return
	}
	m.statusStop = make(chan struct{})
	go m.pollStatus(m.statusStop)
}

// Close stops detection and all pollers.
func (m *Manager) Close() {
	m.StopDetection(context.Background())

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.statusStop != nil {
		close(m.statusStop)
		m.statusStop = nil
	}
}

// StartDetection asks the backend to start streaming and launches the
// frame and prediction pollers. It is a no-op when already detecting.
func (m *Manager) StartDetection(ctx context.Context) error {
	m.mu.RLock()
	detecting := m.detecting
	m.mu.RUnlock()
	if detecting {
		return nil
	}

	ack, err := m.client.StartStream(ctx)
	if err != nil {
		lgr.Logger.Error("failed to start detection", slog.Any("error", err))
		m.pushToast(ToastError, "Failed to start detection")
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.detecting {
		return nil
	}

	if ack.Settings != nil {
		m.committed = *ack.Settings
		m.draft = *ack.Settings
	}

	m.detecting = true
	m.stopCh = make(chan struct{})
	pollCtx, cancel := context.WithCancel(context.Background())
	m.pollCancel = cancel
	go m.pollFrames(pollCtx, m.stopCh)
	go m.pollPredictions(pollCtx, m.stopCh)

	lgr.Logger.Info("detection started", slog.String("backend", m.client.BaseURL()))
	return nil
}

// StopDetection stops the pollers, cancels any in-flight poll request,
// clears the current prediction, releases the held frame, and asks the
// backend to stop streaming. It is a no-op when not detecting. Local state
// is cleared even if the backend call fails, so the dashboard stops showing
// stale detections.
func (m *Manager) StopDetection(ctx context.Context) error {
	m.mu.Lock()
	if !m.detecting {
		m.mu.Unlock()
		return nil
	}
	m.detecting = false
	close(m.stopCh)
	m.stopCh = nil
	m.pollCancel()
	m.pollCancel = nil
	m.current = nil
	m.frame = nil
	m.mu.Unlock()

	if _, err := m.client.StopStream(ctx); err != nil {
		lgr.Logger.Error("failed to stop detection", slog.Any("error", err))
		m.pushToast(ToastError, "Failed to stop detection")
		return err
	}

	lgr.Logger.Info("detection stopped")
	return nil
}

// Detecting reports whether the detection session is active.
func (m *Manager) Detecting() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.detecting
}

// Current returns the most recent prediction, or nil when none is held.
func (m *Manager) Current() *Prediction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil
	}
	p := *m.current
	return &p
}

// History returns the prediction history, most recent first.
func (m *Manager) History() []Prediction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.history.list()
}

// ClearHistory drops all history entries.
func (m *Manager) ClearHistory() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history.clear()
}

// Frame returns the latest JPEG frame bytes, or nil when none is held.
// The returned slice is never mutated after being stored.
func (m *Manager) Frame() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.frame
}

// Status returns the latest backend status snapshot, or nil before the
// first successful refresh.
func (m *Manager) Status() *backend.Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.status == nil {
		return nil
	}
	st := *m.status
	return &st
}

// Draft returns the local, uncommitted settings copy.
func (m *Manager) Draft() backend.Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.draft
}

// Committed returns the settings last accepted by the backend.
func (m *Manager) Committed() backend.Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.committed
}

// SetDraft validates and stores a local settings draft. Committed settings
// are untouched until SaveSettings succeeds.
func (m *Manager) SetDraft(s backend.Settings) error {
	if s.ConfidenceThreshold < 0 || s.ConfidenceThreshold > 1 {
		return ErrInvalidThreshold
	}
	if s.ZoomFactor < 1 || s.ZoomFactor > 2 {
		return ErrInvalidZoom
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.draft = s
	return nil
}

// SaveSettings pushes the draft to the backend and commits it locally only
// when both updates succeed.
func (m *Manager) SaveSettings(ctx context.Context) (backend.Settings, error) {
	m.mu.RLock()
	draft := m.draft
	committed := m.committed
	m.mu.RUnlock()

	if _, err := m.client.SetThreshold(ctx, draft.ConfidenceThreshold); err != nil {
		lgr.Logger.Error("failed to save threshold", slog.Any("error", err))
		m.pushToast(ToastError, "Failed to save settings")
		return committed, err
	}
	if _, err := m.client.SetZoom(ctx, draft.ZoomFactor); err != nil {
		lgr.Logger.Error("failed to save zoom", slog.Any("error", err))
		m.pushToast(ToastError, "Failed to save settings")
		return committed, err
	}

	m.mu.Lock()
	m.committed = draft
	m.mu.Unlock()

	m.pushToast(ToastInfo, "Settings saved")
	lgr.Logger.Info("settings saved",
		slog.Float64("threshold", draft.ConfidenceThreshold),
		slog.Float64("zoom", draft.ZoomFactor),
	)
	return draft, nil
}

// Toasts returns the active notifications, oldest first.
func (m *Manager) Toasts() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.toasts.active()
}

// DismissToast removes the notification with the given id.
func (m *Manager) DismissToast(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.toasts.dismiss(id)
}

// OnPrediction registers a callback invoked whenever a prediction enters
// the history. Used by the tray to show the last detected sign.
func (m *Manager) OnPrediction(fn func(sign string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onPrediction = fn
}

// BackendHealth probes the backend health endpoint.
func (m *Manager) BackendHealth(ctx context.Context) (*backend.Health, error) {
	return m.client.Health(ctx)
}

// Snapshot returns a consistent copy of the full session state.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := State{
		Detecting: m.detecting,
		History:   m.history.list(),
		Draft:     m.draft,
		Committed: m.committed,
		Toasts:    m.toasts.active(),
	}
	if m.current != nil {
		p := *m.current
		state.Current = &p
	}
	if m.status != nil {
		st := *m.status
		state.Status = &st
	}
	return state
}

// pollFrames fetches the latest frame while detecting, replacing the held
// buffer. The previous buffer is dropped on replacement; StopDetection
// drops the last one. A result from a poll still in flight when the session
// stopped is discarded, so the cleared frame never reappears.
func (m *Manager) pollFrames(ctx context.Context, stop chan struct{}) {
	ticker := time.NewTicker(m.config.FramePollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			data, err := m.client.Frame(ctx)
			if err != nil {
				if errors.Is(err, backend.ErrNoFrame) || ctx.Err() != nil {
					continue
				}
				lgr.Logger.Error("frame poll failed", slog.Any("error", err))
				m.pushToast(ToastError, "Failed to fetch video frame")
				continue
			}

			m.mu.Lock()
			if m.stopCh != stop {
				m.mu.Unlock()
				return
			}
			m.frame = data
			m.mu.Unlock()
		}
	}
}

// pollPredictions fetches the current detection while detecting. Each
// result becomes the current prediction; it also enters the history unless
// it repeats the most recent entry. A result from a poll still in flight
// when the session stopped is discarded.
func (m *Manager) pollPredictions(ctx context.Context, stop chan struct{}) {
	ticker := time.NewTicker(m.config.PredictionPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			result, err := m.client.Predictions(ctx)
			if err != nil {
				if errors.Is(err, backend.ErrNoPrediction) || ctx.Err() != nil {
					continue
				}
				lgr.Logger.Error("prediction poll failed", slog.Any("error", err))
				m.pushToast(ToastError, "Failed to fetch predictions")
				continue
			}

			p := Prediction{
				Sign:       result.Sign,
				Confidence: result.Confidence,
				Timestamp:  time.Now(),
			}

			m.mu.Lock()
			if m.stopCh != stop {
				m.mu.Unlock()
				return
			}
			m.current = &p
			added := m.history.add(p)
			callback := m.onPrediction
			m.mu.Unlock()

			if added && callback != nil {
				callback(p.Sign)
			}
		}
	}
}

// pollStatus refreshes the backend status snapshot for the lifetime of
// the manager.
func (m *Manager) pollStatus(stop chan struct{}) {
	ticker := time.NewTicker(m.config.StatusPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			status, err := m.client.Status(context.Background())
			if err != nil {
				lgr.Logger.Error("status poll failed", slog.Any("error", err))
				m.pushToast(ToastError, "Failed to refresh backend status")
				continue
			}

			m.mu.Lock()
			m.status = status
			m.mu.Unlock()
		}
	}
}

func (m *Manager) pushToast(level ToastLevel, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toasts.push(level, message)
}
