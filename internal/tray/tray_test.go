package tray

import (
	"context"
	"testing"

	"github.com/ayusman/mudra/internal/event"
)

func gestureSnapshot(g event.Gesture) event.Snapshot {
	return event.Snapshot{
		Hands: []event.HandState{
			{Label: event.Right, Fingers: event.FingerVector{1, 1, 1, 1, 1}, Gesture: g},
		},
	}
}

func TestSetLastGesture_BeforeTrayIsReady(t *testing.T) {
	tr := New()

	// No menu exists yet; the value must still be recorded safely so the
	// menu can pick it up once the tray comes up.
	tr.SetLastGesture("swipe_left")

	if tr.last != "swipe_left" {
		t.Errorf("last = %q, want swipe_left", tr.last)
	}
}

func TestUpdater_TracksMostRecentGesture(t *testing.T) {
	tr := New()
	u := NewUpdater(tr)

	if err := u.Accept(context.Background(), gestureSnapshot(event.SwipeLeft)); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if tr.last != "swipe_left" {
		t.Fatalf("last = %q, want swipe_left", tr.last)
	}

	// A gesture-free snapshot keeps the previous gesture on display.
	if err := u.Accept(context.Background(), gestureSnapshot(event.GestureNone)); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if tr.last != "swipe_left" {
		t.Errorf("gesture-free snapshot overwrote the entry: %q", tr.last)
	}

	if err := u.Accept(context.Background(), gestureSnapshot(event.SwipeUp)); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if tr.last != "swipe_up" {
		t.Errorf("last = %q, want swipe_up", tr.last)
	}
}

func TestUpdater_Name(t *testing.T) {
	if got := NewUpdater(New()).Name(); got != "tray" {
		t.Errorf("got %q, want tray", got)
	}
}
