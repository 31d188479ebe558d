package consumer

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/ayusman/mudra/internal/event"
)

func sampleSnapshot() event.Snapshot {
	return event.Snapshot{
		Hands: []event.HandState{
			{
				Label:   event.Right,
				Fingers: event.FingerVector{1, 1, 0, 0, 0},
				Gesture: event.SwipeLeft,
			},
		},
	}
}

func TestStdout_WritesOneJSONLinePerSnapshot(t *testing.T) {
	var buf bytes.Buffer
	s := NewStdoutTo(&buf)

	if err := s.Accept(context.Background(), sampleSnapshot()); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if err := s.Accept(context.Background(), event.Snapshot{}); err != nil {
		t.Fatalf("accept empty: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}

	want := `{"hands":[{"label":"right","fingers":[1,1,0,0,0],"gesture":"swipe_left"}]}`
	if lines[0] != want {
		t.Errorf("line 1 = %s, want %s", lines[0], want)
	}
	if lines[1] != `{"hands":[]}` {
		t.Errorf("line 2 = %s, want empty-hands object", lines[1])
	}
}

func TestStdout_RoundTrips(t *testing.T) {
	var buf bytes.Buffer
	s := NewStdoutTo(&buf)

	snap := sampleSnapshot()
	if err := s.Accept(context.Background(), snap); err != nil {
		t.Fatalf("accept: %v", err)
	}

	var got event.Snapshot
	if err := got.UnmarshalJSON(buf.Bytes()); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.Equal(snap) {
		t.Errorf("round trip changed the snapshot: got %+v, want %+v", got, snap)
	}
}

func TestStdout_Name(t *testing.T) {
	if got := NewStdout().Name(); got != "stdout" {
		t.Errorf("got %q, want stdout", got)
	}
}
