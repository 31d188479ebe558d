package fingers

import "github.com/ayusman/mudra/internal/event"

// Filter debounces raw per-frame finger vectors. For each hand label it
// keeps a bounded history and reports the per-finger majority across it,
// emitting only when the majority vector changes.
//
// Depth is counted in processed frames, not wall-clock time: when the
// caller skips frames, skipped frames never enter the history, so the
// effective smoothing latency grows with the skip factor.
type Filter struct {
	depth   int
	history map[event.HandLabel][]event.FingerVector
	last    map[event.HandLabel]event.FingerVector
	seen    map[event.HandLabel]bool
}

// NewFilter creates a Filter with the given history depth.
// Depth 1 disables smoothing and passes raw vectors through.
func NewFilter(depth int) *Filter {
	if depth < 1 {
		depth = 1
	}
	return &Filter{
		depth:   depth,
		history: make(map[event.HandLabel][]event.FingerVector),
		last:    make(map[event.HandLabel]event.FingerVector),
		seen:    make(map[event.HandLabel]bool),
	}
}

// Update pushes a raw vector into the label's history and returns the
// debounced vector plus whether it changed since the last emission for
// that label. The first observation of a label always reports changed.
//
// Ties in an even-depth history hold the previously emitted value for
// that finger, preferring stability over flip-flopping.
func (f *Filter) Update(label event.HandLabel, raw event.FingerVector) (event.FingerVector, bool) {
	buf := append(f.history[label], raw)
	if len(buf) > f.depth {
		buf = buf[len(buf)-f.depth:]
	}
	f.history[label] = buf

	prev := f.last[label]
	var stable event.FingerVector
	for finger := 0; finger < event.NumFingers; finger++ {
		ones := 0
		for _, v := range buf {
			ones += v[finger]
		}
		switch {
		case ones*2 > len(buf):
			stable[finger] = 1
		case ones*2 < len(buf):
			stable[finger] = 0
		default:
			stable[finger] = prev[finger]
		}
	}

	changed := !f.seen[label] || stable != prev
	f.last[label] = stable
	f.seen[label] = true

	return stable, changed
}

// Reset drops all history for a label, as when a hand leaves the view long
// enough that its old observations should not influence a returning hand.
func (f *Filter) Reset(label event.HandLabel) {
	delete(f.history, label)
	delete(f.last, label)
	delete(f.seen, label)
}
