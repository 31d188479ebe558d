package tray

import (
	"context"

	"github.com/ayusman/mudra/internal/event"
)

// Updater is a consumer that mirrors each emitted gesture into the
// tray's "last gesture" menu entry. Gesture-free snapshots leave the
// entry unchanged.
type Updater struct {
	tray *Tray
}

// NewUpdater creates an Updater bound to t.
func NewUpdater(t *Tray) *Updater {
	return &Updater{tray: t}
}

// Accept records any gesture carried by the snapshot.
func (u *Updater) Accept(_ context.Context, snap event.Snapshot) error {
	for _, hand := range snap.Hands {
		if hand.Gesture != event.GestureNone {
			u.tray.SetLastGesture(string(hand.Gesture))
		}
	}
	return nil
}

// Close is a no-op; the tray's lifecycle is owned by its Run loop.
func (u *Updater) Close() error {
	return nil
}

// Name identifies the consumer in dispatcher logs.
func (u *Updater) Name() string {
	return "tray"
}
