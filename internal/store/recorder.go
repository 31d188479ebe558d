package store

import (
	"context"

	"github.com/ayusman/mudra/internal/event"
)

// Recorder is a consumer that appends every delivered snapshot to the
// event log. Insert failures surface as transient delivery errors.
type Recorder struct {
	store *Store
}

// NewRecorder creates a Recorder over an open store.
func NewRecorder(s *Store) *Recorder {
	return &Recorder{store: s}
}

// Accept records one snapshot.
func (r *Recorder) Accept(_ context.Context, snap event.Snapshot) error {
	_, err := r.store.Events().Insert(snap)
	return err
}

// Close closes the underlying store.
func (r *Recorder) Close() error {
	return r.store.Close()
}

// Name identifies the consumer in dispatcher logs.
func (r *Recorder) Name() string {
	return "recorder"
}
