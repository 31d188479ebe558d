package bus

import (
	"sync"

	"github.com/ayusman/mudra/internal/event"
)

// mailbox is a per-consumer delivery queue. The producer side never
// blocks: a bounded mailbox drops its oldest pending snapshot when full,
// keeping latest-state semantics; a lossless mailbox grows instead.
// Snapshots leave in the order they arrived.
type mailbox struct {
	mu       sync.Mutex
	items    []event.Snapshot
	capacity int
	lossless bool
	wake     chan struct{}
	closed   bool
}

func newMailbox(capacity int, lossless bool) *mailbox {
	if capacity < 1 {
		capacity = 1
	}
	return &mailbox{
		capacity: capacity,
		lossless: lossless,
		wake:     make(chan struct{}, 1),
	}
}

// put enqueues a snapshot without blocking.
func (m *mailbox) put(snap event.Snapshot) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	if !m.lossless && len(m.items) >= m.capacity {
		m.items = m.items[1:]
	}
	m.items = append(m.items, snap)
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// take removes the oldest pending snapshot, blocking until one arrives or
// quit is closed. Returns false when asked to stop with nothing pending.
func (m *mailbox) take(quit <-chan struct{}) (event.Snapshot, bool) {
	for {
		m.mu.Lock()
		if len(m.items) > 0 {
			snap := m.items[0]
			m.items = m.items[1:]
			m.mu.Unlock()
			return snap, true
		}
		m.mu.Unlock()

		select {
		case <-quit:
			return event.Snapshot{}, false
		case <-m.wake:
		}
	}
}

// close stops further puts.
func (m *mailbox) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}
