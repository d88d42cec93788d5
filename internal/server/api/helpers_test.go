package api

import (
	"testing"
	"time"

	"github.com/mvasquez/signboard/internal/backend"
	"github.com/mvasquez/signboard/internal/backend/backendtest"
	"github.com/mvasquez/signboard/internal/session"
)

// newTestManager creates a session manager wired to a fake backend.
func newTestManager(t *testing.T) (*session.Manager, *backendtest.Backend) {
	t.Helper()

	fake := backendtest.New(t)
	client := backend.New(fake.URL(), time.Second)

	m := session.New(client, session.Config{
		FramePollInterval:      10 * time.Millisecond,
		PredictionPollInterval: 10 * time.Millisecond,
		StatusPollInterval:     10 * time.Millisecond,
	})
	t.Cleanup(m.Close)

	return m, fake
}
