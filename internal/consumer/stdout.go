package consumer

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/ayusman/mudra/internal/event"
)

// Stdout serializes each snapshot as one JSON line. It is the default
// consumer and never blocks meaningfully.
type Stdout struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewStdout creates a Stdout consumer writing to standard output.
func NewStdout() *Stdout {
	return NewStdoutTo(os.Stdout)
}

// NewStdoutTo creates a Stdout consumer writing to w.
func NewStdoutTo(w io.Writer) *Stdout {
	return &Stdout{enc: json.NewEncoder(w)}
}

// Accept writes the snapshot as a JSON line.
func (s *Stdout) Accept(_ context.Context, snap event.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(snap)
}

// Close is a no-op; the writer is not owned by the consumer.
func (s *Stdout) Close() error {
	return nil
}

// Name identifies the consumer in dispatcher logs.
func (s *Stdout) Name() string {
	return "stdout"
}
