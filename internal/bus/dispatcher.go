// Package bus fans stabilized snapshots out to registered consumers,
// isolating each consumer's pacing and failures from the producer and
// from its siblings.
package bus

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/consumer"
	"github.com/ayusman/mudra/internal/event"
	"github.com/google/uuid"
)

// State is the dispatcher lifecycle state.
type State int

const (
	// StateRunning accepts publishes and registrations.
	StateRunning State = iota
	// StateDraining stops intake while consumers finish in-flight work.
	StateDraining
	// StateStopped is the terminal state after shutdown completes.
	StateStopped
)

// DefaultQueueSize is the per-consumer mailbox depth. Depth 1 gives pure
// latest-state semantics: a slow consumer always wakes to the newest
// snapshot.
const DefaultQueueSize = 1

// DefaultShutdownGrace bounds how long shutdown waits for each consumer to
// finish its in-flight snapshot.
const DefaultShutdownGrace = 5 * time.Second

// ErrNotRunning is returned when registering or publishing after shutdown
// has begun.
var ErrNotRunning = errors.New("dispatcher is not running")

// registration is one consumer's delivery path.
type registration struct {
	id       string
	consumer consumer.Consumer
	box      *mailbox
	quit     chan struct{}
	done     chan struct{}
}

func (r *registration) name() string {
	if n, ok := r.consumer.(consumer.Namer); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", r.consumer)
}

// Dispatcher delivers each published snapshot to every registered
// consumer through an independent bounded mailbox and worker goroutine.
type Dispatcher struct {
	mu    sync.Mutex
	regs  map[string]*registration
	state State

	ctx    context.Context
	cancel context.CancelFunc

	grace time.Duration
	once  sync.Once
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithShutdownGrace sets how long Shutdown waits for consumers to finish
// their in-flight snapshot before abandoning them.
func WithShutdownGrace(grace time.Duration) Option {
	return func(d *Dispatcher) {
		if grace > 0 {
			d.grace = grace
		}
	}
}

// New creates a running Dispatcher.
func New(opts ...Option) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		regs:   make(map[string]*registration),
		state:  StateRunning,
		ctx:    ctx,
		cancel: cancel,
		grace:  DefaultShutdownGrace,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// RegisterOption configures one consumer's delivery path.
type RegisterOption func(*registerConfig)

type registerConfig struct {
	queueSize int
	lossless  bool
}

// WithQueueSize sets the mailbox depth for a bounded registration.
func WithQueueSize(n int) RegisterOption {
	return func(c *registerConfig) {
		if n > 0 {
			c.queueSize = n
		}
	}
}

// WithLossless makes the registration's queue unbounded, trading memory
// growth for delivery of every snapshot.
func WithLossless() RegisterOption {
	return func(c *registerConfig) {
		c.lossless = true
	}
}

// Register adds a consumer and returns its registration ID. The consumer
// starts receiving from the next publish. Registration is permitted only
// while running.
func (d *Dispatcher) Register(c consumer.Consumer, opts ...RegisterOption) (string, error) {
	cfg := registerConfig{queueSize: DefaultQueueSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != StateRunning {
		return "", ErrNotRunning
	}

	r := &registration{
		id:       uuid.NewString(),
		consumer: c,
		box:      newMailbox(cfg.queueSize, cfg.lossless),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	d.regs[r.id] = r
	go d.deliver(r)

	return r.id, nil
}

// Unregister removes a consumer, waits for its in-flight snapshot, and
// closes it. Unknown IDs are ignored.
func (d *Dispatcher) Unregister(id string) {
	d.mu.Lock()
	r, ok := d.regs[id]
	if ok {
		delete(d.regs, id)
	}
	d.mu.Unlock()

	if !ok {
		return
	}

	r.box.close()
	close(r.quit)
	<-r.done
	if err := r.consumer.Close(); err != nil {
		log.Printf("consumer %s: close failed: %v", r.name(), err)
	}
}

// Publish hands the snapshot to every registered consumer's mailbox. The
// handoff never blocks; a consumer that has not kept pace loses its oldest
// pending snapshot unless it registered lossless. Publishes after shutdown
// begins are dropped.
func (d *Dispatcher) Publish(snap event.Snapshot) {
	d.mu.Lock()
	if d.state != StateRunning {
		d.mu.Unlock()
		return
	}
	regs := make([]*registration, 0, len(d.regs))
	for _, r := range d.regs {
		regs = append(regs, r)
	}
	d.mu.Unlock()

	for _, r := range regs {
		r.box.put(snap)
	}
}

// State returns the current lifecycle state.
func (d *Dispatcher) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// deliver is one consumer's worker. Snapshots arrive in publish order;
// Accept errors are logged and never propagate past this boundary.
func (d *Dispatcher) deliver(r *registration) {
	defer close(r.done)
	for {
		snap, ok := r.box.take(r.quit)
		if !ok {
			return
		}
		if err := r.consumer.Accept(d.ctx, snap); err != nil {
			log.Printf("consumer %s: delivery failed: %v", r.name(), err)
		}
	}
}

// Shutdown stops intake, lets every consumer finish its in-flight
// snapshot within the grace period, then closes all consumers. Consumers
// that do not acknowledge in time are abandoned with best-effort cleanup.
// Shutdown is idempotent; concurrent callers share one drain sequence and
// all return once it completes.
func (d *Dispatcher) Shutdown() {
	d.once.Do(d.drain)
}

func (d *Dispatcher) drain() {
	d.mu.Lock()
	d.state = StateDraining
	regs := make([]*registration, 0, len(d.regs))
	for _, r := range d.regs {
		regs = append(regs, r)
	}
	// Take ownership of every registration in the same critical section:
	// a concurrent Unregister no longer finds them, so quit and Close are
	// reached by exactly one path.
	d.regs = make(map[string]*registration)
	d.mu.Unlock()

	for _, r := range regs {
		r.box.close()
		close(r.quit)
	}

	deadline := time.NewTimer(d.grace)
	defer deadline.Stop()

	expired := false
	for _, r := range regs {
		if !expired {
			select {
			case <-r.done:
				d.closeConsumer(r)
				continue
			case <-deadline.C:
				// Grace expired: cancel outstanding Accepts so blocked
				// consumers get a chance to bail out.
				expired = true
				d.cancel()
			}
		}
		select {
		case <-r.done:
			d.closeConsumer(r)
		case <-time.After(100 * time.Millisecond):
			log.Printf("consumer %s: did not stop within %s, abandoning", r.name(), d.grace)
			go func(r *registration) {
				<-r.done
				d.closeConsumer(r)
			}(r)
		}
	}

	d.cancel()

	d.mu.Lock()
	d.state = StateStopped
	d.mu.Unlock()
}

func (d *Dispatcher) closeConsumer(r *registration) {
	if err := r.consumer.Close(); err != nil {
		log.Printf("consumer %s: close failed: %v", r.name(), err)
	}
}
