package consumer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ayusman/mudra/internal/event"
)

// DefaultHTTPTimeout bounds each outbound delivery so a stalled endpoint
// cannot hold a delivery slot forever.
const DefaultHTTPTimeout = 5 * time.Second

// HTTP posts each snapshot as JSON to a remote endpoint. Transport errors
// and non-2xx responses are transient failures reported to the dispatcher.
type HTTP struct {
	url    string
	client *http.Client
}

// NewHTTP creates an HTTP consumer posting to the given URL.
func NewHTTP(url string) *HTTP {
	return &HTTP{
		url: url,
		client: &http.Client{
			Timeout: DefaultHTTPTimeout,
		},
	}
}

// Accept posts the snapshot to the configured URL.
func (h *HTTP) Accept(ctx context.Context, snap event.Snapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("post snapshot: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("post snapshot: endpoint returned %s", resp.Status)
	}

	return nil
}

// Close releases idle connections.
func (h *HTTP) Close() error {
	h.client.CloseIdleConnections()
	return nil
}

// Name identifies the consumer in dispatcher logs.
func (h *HTTP) Name() string {
	return "http"
}
