// Package consumer defines the snapshot delivery contract and its
// built-in implementations.
package consumer

import (
	"context"

	"github.com/ayusman/mudra/internal/event"
)

// Consumer receives stabilized snapshots from the dispatcher. Accept may
// block on I/O; the dispatcher isolates each consumer so a slow Accept
// never affects siblings or the producer. A returned error marks a
// transient delivery failure: it is logged and the consumer stays
// registered.
type Consumer interface {
	// Accept processes one snapshot. Implementations must observe ctx
	// cancellation promptly during shutdown.
	Accept(ctx context.Context, snap event.Snapshot) error

	// Close releases any resources held by the consumer. Called once by
	// the dispatcher during shutdown.
	Close() error
}

// Name returns a short identifier for logging. Consumers that do not
// implement the optional Namer interface are logged by their Go type.
type Namer interface {
	Name() string
}
