package bus

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/event"
)

// collectConsumer records every snapshot it is handed.
type collectConsumer struct {
	mu       sync.Mutex
	got      []event.Snapshot
	received chan struct{}
	closes   atomic.Int32
	err      error
}

func newCollectConsumer() *collectConsumer {
	return &collectConsumer{received: make(chan struct{}, 64)}
}

func (c *collectConsumer) Accept(_ context.Context, snap event.Snapshot) error {
	c.mu.Lock()
	c.got = append(c.got, snap)
	c.mu.Unlock()
	c.received <- struct{}{}
	return c.err
}

func (c *collectConsumer) Close() error {
	c.closes.Add(1)
	return nil
}

func (c *collectConsumer) snapshots() []event.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]event.Snapshot, len(c.got))
	copy(out, c.got)
	return out
}

// gateConsumer blocks in Accept until released, or until the delivery
// context is canceled.
type gateConsumer struct {
	entered chan struct{}
	release chan struct{}
	mu      sync.Mutex
	got     []event.Snapshot
}

func newGateConsumer() *gateConsumer {
	return &gateConsumer{
		entered: make(chan struct{}, 64),
		release: make(chan struct{}),
	}
}

func (c *gateConsumer) Accept(ctx context.Context, snap event.Snapshot) error {
	c.mu.Lock()
	c.got = append(c.got, snap)
	c.mu.Unlock()
	c.entered <- struct{}{}

	select {
	case <-c.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *gateConsumer) Close() error { return nil }

func (c *gateConsumer) snapshots() []event.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]event.Snapshot, len(c.got))
	copy(out, c.got)
	return out
}

func snapFor(fingers event.FingerVector) event.Snapshot {
	return event.Snapshot{
		Hands: []event.HandState{{Label: event.Right, Fingers: fingers}},
	}
}

func waitReceived(t *testing.T, ch chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestDispatcher_DeliversToAllConsumers(t *testing.T) {
	d := New()
	defer d.Shutdown()

	a := newCollectConsumer()
	b := newCollectConsumer()
	if _, err := d.Register(a); err != nil {
		t.Fatalf("register a: %v", err)
	}
	if _, err := d.Register(b); err != nil {
		t.Fatalf("register b: %v", err)
	}

	snap := snapFor(event.FingerVector{1, 0, 0, 0, 0})
	d.Publish(snap)

	waitReceived(t, a.received, "consumer a")
	waitReceived(t, b.received, "consumer b")

	for _, c := range []*collectConsumer{a, b} {
		got := c.snapshots()
		if len(got) != 1 || !got[0].Equal(snap) {
			t.Errorf("consumer got %+v, want one copy of the published snapshot", got)
		}
	}
}

func TestDispatcher_BlockedConsumerDoesNotStallSiblings(t *testing.T) {
	d := New(WithShutdownGrace(200 * time.Millisecond))
	defer d.Shutdown()

	blocked := newGateConsumer()
	fast := newCollectConsumer()
	if _, err := d.Register(blocked); err != nil {
		t.Fatalf("register blocked: %v", err)
	}
	if _, err := d.Register(fast); err != nil {
		t.Fatalf("register fast: %v", err)
	}

	// The blocked consumer never returns from Accept, yet every publish
	// must still reach the fast consumer promptly.
	for i := 0; i < 3; i++ {
		d.Publish(snapFor(event.FingerVector{1, i % 2, 0, 0, 0}))
		waitReceived(t, fast.received, "fast consumer")
	}

	if got := len(fast.snapshots()); got != 3 {
		t.Errorf("fast consumer got %d snapshots, want 3", got)
	}
}

func TestDispatcher_DropOldestKeepsNewest(t *testing.T) {
	d := New(WithShutdownGrace(200 * time.Millisecond))
	defer d.Shutdown()

	c := newGateConsumer()
	if _, err := d.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}

	first := snapFor(event.FingerVector{1, 0, 0, 0, 0})
	middle := snapFor(event.FingerVector{0, 1, 0, 0, 0})
	last := snapFor(event.FingerVector{0, 0, 1, 0, 0})

	d.Publish(first)
	waitReceived(t, c.entered, "first delivery") // worker now blocked inside Accept

	// Two more publishes while the worker is stuck: with the default
	// depth-1 mailbox the middle snapshot is dropped for the newest.
	d.Publish(middle)
	d.Publish(last)

	close(c.release)
	waitReceived(t, c.entered, "second delivery")

	got := c.snapshots()
	if len(got) != 2 {
		t.Fatalf("got %d deliveries, want 2", len(got))
	}
	if !got[0].Equal(first) || !got[1].Equal(last) {
		t.Errorf("got %+v, want first then last (middle dropped)", got)
	}
}

func TestDispatcher_LosslessDeliversEverySnapshot(t *testing.T) {
	d := New()
	defer d.Shutdown()

	c := newGateConsumer()
	if _, err := d.Register(c, WithLossless()); err != nil {
		t.Fatalf("register: %v", err)
	}

	snaps := []event.Snapshot{
		snapFor(event.FingerVector{1, 0, 0, 0, 0}),
		snapFor(event.FingerVector{0, 1, 0, 0, 0}),
		snapFor(event.FingerVector{0, 0, 1, 0, 0}),
	}

	d.Publish(snaps[0])
	waitReceived(t, c.entered, "first delivery")
	d.Publish(snaps[1])
	d.Publish(snaps[2])

	close(c.release)
	waitReceived(t, c.entered, "second delivery")
	waitReceived(t, c.entered, "third delivery")

	got := c.snapshots()
	if len(got) != 3 {
		t.Fatalf("got %d deliveries, want all 3", len(got))
	}
	for i := range snaps {
		if !got[i].Equal(snaps[i]) {
			t.Errorf("delivery %d out of order: got %+v, want %+v", i, got[i], snaps[i])
		}
	}
}

func TestDispatcher_AcceptErrorKeepsConsumerRegistered(t *testing.T) {
	d := New()
	defer d.Shutdown()

	c := newCollectConsumer()
	c.err = errors.New("endpoint unavailable")
	if _, err := d.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}

	d.Publish(snapFor(event.FingerVector{1, 0, 0, 0, 0}))
	waitReceived(t, c.received, "first delivery")

	// The failure was logged; the consumer keeps receiving.
	d.Publish(snapFor(event.FingerVector{0, 1, 0, 0, 0}))
	waitReceived(t, c.received, "second delivery")

	if got := len(c.snapshots()); got != 2 {
		t.Errorf("consumer got %d snapshots, want 2", got)
	}
}

func TestDispatcher_ShutdownIsIdempotentUnderConcurrency(t *testing.T) {
	d := New()

	c := newCollectConsumer()
	if _, err := d.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Shutdown()
		}()
	}
	wg.Wait()

	if got := d.State(); got != StateStopped {
		t.Errorf("state = %v, want StateStopped", got)
	}
	if closes := c.closes.Load(); closes != 1 {
		t.Errorf("consumer closed %d times, want exactly 1", closes)
	}
}

func TestDispatcher_ShutdownAbandonsUnresponsiveConsumer(t *testing.T) {
	d := New(WithShutdownGrace(100 * time.Millisecond))

	c := newGateConsumer() // observes ctx, so cancellation unblocks it
	if _, err := d.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}

	d.Publish(snapFor(event.FingerVector{1, 0, 0, 0, 0}))
	waitReceived(t, c.entered, "delivery")

	done := make(chan struct{})
	go func() {
		d.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("shutdown did not return despite the grace period")
	}
}

func TestDispatcher_PublishAfterShutdownIsDropped(t *testing.T) {
	d := New()

	c := newCollectConsumer()
	if _, err := d.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}

	d.Shutdown()
	d.Publish(snapFor(event.FingerVector{1, 0, 0, 0, 0}))

	if got := len(c.snapshots()); got != 0 {
		t.Errorf("consumer received %d snapshots after shutdown, want 0", got)
	}
}

func TestDispatcher_RegisterAfterShutdownFails(t *testing.T) {
	d := New()
	d.Shutdown()

	if _, err := d.Register(newCollectConsumer()); !errors.Is(err, ErrNotRunning) {
		t.Errorf("got err %v, want ErrNotRunning", err)
	}
}

func TestDispatcher_UnregisterRacingShutdownClosesOnce(t *testing.T) {
	// Unregister and Shutdown contend for the same registrations; each
	// consumer's quit channel and Close must be reached by exactly one of
	// the two paths, every time.
	for round := 0; round < 25; round++ {
		d := New()

		consumers := make([]*collectConsumer, 4)
		ids := make([]string, len(consumers))
		for i := range consumers {
			consumers[i] = newCollectConsumer()
			id, err := d.Register(consumers[i])
			if err != nil {
				t.Fatalf("round %d: register %d: %v", round, i, err)
			}
			ids[i] = id
		}

		var wg sync.WaitGroup
		wg.Add(3)
		go func() {
			defer wg.Done()
			d.Publish(snapFor(event.FingerVector{1, 0, 0, 0, 0}))
		}()
		go func() {
			defer wg.Done()
			for _, id := range ids[:2] {
				d.Unregister(id)
			}
		}()
		go func() {
			defer wg.Done()
			d.Shutdown()
		}()
		wg.Wait()

		for i, c := range consumers {
			if closes := c.closes.Load(); closes != 1 {
				t.Fatalf("round %d: consumer %d closed %d times, want exactly 1", round, i, closes)
			}
		}
	}
}

func TestDispatcher_UnregisterStopsDelivery(t *testing.T) {
	d := New()
	defer d.Shutdown()

	keep := newCollectConsumer()
	drop := newCollectConsumer()
	if _, err := d.Register(keep); err != nil {
		t.Fatalf("register keep: %v", err)
	}
	id, err := d.Register(drop)
	if err != nil {
		t.Fatalf("register drop: %v", err)
	}

	d.Unregister(id)
	if closes := drop.closes.Load(); closes != 1 {
		t.Fatalf("unregistered consumer closed %d times, want 1", closes)
	}

	d.Publish(snapFor(event.FingerVector{1, 0, 0, 0, 0}))
	waitReceived(t, keep.received, "remaining consumer")

	if got := len(drop.snapshots()); got != 0 {
		t.Errorf("unregistered consumer received %d snapshots, want 0", got)
	}
}
