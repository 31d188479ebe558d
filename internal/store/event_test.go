package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ayusman/mudra/internal/event"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func twoHandSnapshot() event.Snapshot {
	return event.Snapshot{
		Hands: []event.HandState{
			{Label: event.Left, Fingers: event.FingerVector{1, 1, 1, 1, 1}},
			{Label: event.Right, Fingers: event.FingerVector{1, 0, 0, 0, 0}, Gesture: event.SwipeUp},
		},
	}
}

func TestEventRepository_InsertAndGet(t *testing.T) {
	repo := testStore(t).Events()

	snap := twoHandSnapshot()
	id, err := repo.Insert(snap)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id == "" {
		t.Fatal("insert returned an empty ID")
	}

	got, err := repo.Get(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != id {
		t.Errorf("ID = %q, want %q", got.ID, id)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not populated")
	}
	if !got.Snapshot.Equal(snap) {
		t.Errorf("got snapshot %+v, want %+v", got.Snapshot, snap)
	}
}

func TestEventRepository_GetMissing(t *testing.T) {
	repo := testStore(t).Events()

	if _, err := repo.Get("no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("got err %v, want ErrNotFound", err)
	}
}

func TestEventRepository_InsertEmptySnapshot(t *testing.T) {
	repo := testStore(t).Events()

	id, err := repo.Insert(event.Snapshot{})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := repo.Get(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Snapshot.Hands) != 0 {
		t.Errorf("empty snapshot came back with %d hands", len(got.Snapshot.Hands))
	}
}

func TestEventRepository_RecentAndCount(t *testing.T) {
	repo := testStore(t).Events()

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := repo.Insert(event.Snapshot{
			Hands: []event.HandState{
				{Label: event.Right, Fingers: event.FingerVector{i % 2, 0, 0, 0, 0}},
			},
		})
		if err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
		ids = append(ids, id)
	}

	n, err := repo.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}

	events, err := repo.Recent(2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("recent returned %d events, want 2", len(events))
	}
	seen := map[string]bool{ids[0]: true, ids[1]: true, ids[2]: true}
	for _, ev := range events {
		if !seen[ev.ID] {
			t.Errorf("recent returned unknown event %q", ev.ID)
		}
	}
}

func TestEventRepository_NullGestureRoundTrips(t *testing.T) {
	repo := testStore(t).Events()

	snap := event.Snapshot{
		Hands: []event.HandState{
			{Label: event.Left, Fingers: event.FingerVector{0, 1, 0, 0, 0}},
		},
	}
	id, err := repo.Insert(snap)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := repo.Get(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if g := got.Snapshot.Hands[0].Gesture; g != event.GestureNone {
		t.Errorf("gesture = %q, want none", g)
	}
}

func TestRecorder_AppendsToLog(t *testing.T) {
	s := testStore(t)
	r := NewRecorder(s)

	if err := r.Accept(context.Background(), twoHandSnapshot()); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if err := r.Accept(context.Background(), event.Snapshot{}); err != nil {
		t.Fatalf("accept: %v", err)
	}

	n, err := s.Events().Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("recorded %d events, want 2", n)
	}
	if got := r.Name(); got != "recorder" {
		t.Errorf("name = %q, want recorder", got)
	}
}
