package session

import (
	"math"
	"time"
)

// DefaultHistoryLimit is the maximum number of predictions retained when no
// limit is configured.
const DefaultHistoryLimit = 20

// confidenceJump is the minimum confidence change required for a repeated
// sign to enter the history again.
const confidenceJump = 0.1

// Prediction is one detection result surfaced to the dashboard. Timestamp
// is assigned client-side when the result is polled.
type Prediction struct {
	Sign       string    `json:"sign"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// history keeps a capped, most-recent-first list of predictions.
// It is not safe for concurrent use; the Manager guards it.
type history struct {
	limit   int
	entries []Prediction
}

func newHistory(limit int) *history {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &history{
		limit:   limit,
		entries: make([]Prediction, 0, limit),
	}
}

// add records p unless it repeats the most recent entry: same sign with a
// confidence within confidenceJump. It reports whether p was added.
func (h *history) add(p Prediction) bool {
	if len(h.entries) > 0 {
		last := h.entries[0]
		if last.Sign == p.Sign && math.Abs(last.Confidence-p.Confidence) <= confidenceJump {
			return false
		}
	}

	h.entries = append(h.entries, Prediction{})
	copy(h.entries[1:], h.entries)
	h.entries[0] = p

	if len(h.entries) > h.limit {
		h.entries = h.entries[:h.limit]
	}
	return true
}

// list returns a copy of the entries, most recent first.
func (h *history) list() []Prediction {
	out := make([]Prediction, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *history) clear() {
	h.entries = h.entries[:0]
}

func (h *history) len() int {
	return len(h.entries)
}
