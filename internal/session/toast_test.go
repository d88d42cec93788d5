package session

import (
	"testing"
	"time"
)

func TestToastBox_PushAndActive(t *testing.T) {
	b := newToastBox(time.Minute)

	b.push(ToastError, "something failed")
	b.push(ToastInfo, "settings saved")

	active := b.active()
	if len(active) != 2 {
		t.Fatalf("active len = %d, want 2", len(active))
	}
	if active[0].Message != "something failed" {
		t.Errorf("active[0].Message = %q, want oldest first", active[0].Message)
	}
	if active[0].ID == "" || active[1].ID == "" {
		t.Error("expected non-empty toast IDs")
	}
	if active[0].ID == active[1].ID {
		t.Error("expected unique toast IDs")
	}
}

func TestToastBox_ExpiryPrunes(t *testing.T) {
	b := newToastBox(time.Second)

	now := time.Now()
	b.now = func() time.Time { return now }
	b.push(ToastError, "old")

	b.now = func() time.Time { return now.Add(2 * time.Second) }
	b.push(ToastError, "fresh")

	active := b.active()
	if len(active) != 1 {
		t.Fatalf("active len = %d, want 1", len(active))
	}
	if active[0].Message != "fresh" {
		t.Errorf("active[0].Message = %q, want %q", active[0].Message, "fresh")
	}
}

func TestToastBox_Cap(t *testing.T) {
	b := newToastBox(time.Minute)

	for i := 0; i < maxToasts+4; i++ {
		b.push(ToastError, "overflow")
	}

	if got := len(b.active()); got != maxToasts {
		t.Errorf("active len = %d, want %d", got, maxToasts)
	}
}

func TestToastBox_Dismiss(t *testing.T) {
	b := newToastBox(time.Minute)

	toast := b.push(ToastInfo, "dismiss me")
	b.push(ToastInfo, "keep me")

	if !b.dismiss(toast.ID) {
		t.Fatal("dismiss() = false, want true")
	}
	if b.dismiss(toast.ID) {
		t.Error("second dismiss of the same id should return false")
	}

	active := b.active()
	if len(active) != 1 {
		t.Fatalf("active len = %d, want 1", len(active))
	}
	if active[0].Message != "keep me" {
		t.Errorf("remaining toast = %q, want %q", active[0].Message, "keep me")
	}
}
