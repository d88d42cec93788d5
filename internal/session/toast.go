package session

import (
	"time"

	"github.com/google/uuid"
)

// DefaultToastTTL is how long a notification stays visible when no TTL is
// configured.
const DefaultToastTTL = 5 * time.Second

// maxToasts caps how many notifications are held at once; the oldest are
// dropped first.
const maxToasts = 8

// ToastLevel classifies a notification.
type ToastLevel string

const (
	ToastInfo  ToastLevel = "info"
	ToastError ToastLevel = "error"
)

// Toast is a transient user notification.
type Toast struct {
	ID        string     `json:"id"`
	Level     ToastLevel `json:"level"`
	Message   string     `json:"message"`
	CreatedAt time.Time  `json:"created_at"`
}

// toastBox holds transient notifications, pruned by age and capped in size.
// It is not safe for concurrent use; the Manager guards it.
type toastBox struct {
	ttl    time.Duration
	toasts []Toast
	now    func() time.Time
}

func newToastBox(ttl time.Duration) *toastBox {
	if ttl <= 0 {
		ttl = DefaultToastTTL
	}
	return &toastBox{
		ttl: ttl,
		now: time.Now,
	}
}

// push adds a notification, dropping the oldest when the box is full.
func (b *toastBox) push(level ToastLevel, message string) Toast {
	t := Toast{
		ID:        uuid.New().String(),
		Level:     level,
		Message:   message,
		CreatedAt: b.now(),
	}

	b.toasts = append(b.toasts, t)
	if len(b.toasts) > maxToasts {
		b.toasts = b.toasts[len(b.toasts)-maxToasts:]
	}
	return t
}

// active prunes expired notifications and returns a copy of the rest,
// oldest first.
func (b *toastBox) active() []Toast {
	cutoff := b.now().Add(-b.ttl)

	kept := b.toasts[:0]
	for _, t := range b.toasts {
		if t.CreatedAt.After(cutoff) {
			kept = append(kept, t)
		}
	}
	b.toasts = kept

	out := make([]Toast, len(b.toasts))
	copy(out, b.toasts)
	return out
}

// dismiss removes the notification with the given id and reports whether
// it was found.
func (b *toastBox) dismiss(id string) bool {
	for i, t := range b.toasts {
		if t.ID == id {
			b.toasts = append(b.toasts[:i], b.toasts[i+1:]...)
			return true
		}
	}
	return false
}
