// Package engine orchestrates per-frame hand processing: classification,
// debouncing, swipe detection, and change-suppressed snapshot assembly.
package engine

import (
	"sync"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/event"
	"github.com/ayusman/mudra/internal/fingers"
	"github.com/ayusman/mudra/internal/gesture"
)

// Options configures a Processor.
type Options struct {
	// FrameSkip processes every Nth frame; 1 processes all frames.
	FrameSkip int
	// BufferSize is the history depth for finger debouncing and swipe
	// windows, in processed frames.
	BufferSize int
	// GestureThreshold is the normalized displacement a swipe must cover.
	GestureThreshold float64
	// GraceFrames is how many processed frames a hand may be missing
	// before its state is dropped. 0 drops it on the first absent frame.
	GraceFrames int
}

// DefaultOptions returns the standard processor configuration.
func DefaultOptions() Options {
	return Options{
		FrameSkip:        1,
		BufferSize:       5,
		GestureThreshold: 0.1,
		GraceFrames:      10,
	}
}

// track is the retained state for one visible hand.
type track struct {
	state  event.HandState
	missed int
}

// Processor owns all per-hand history. It is not safe for concurrent use;
// the capture loop is its only caller, which keeps histories advancing in
// frame order.
type Processor struct {
	opts     Options
	filter   *fingers.Filter
	swipes   *gesture.SwipeDetector
	tracks   map[event.HandLabel]*track
	frameMod int
	last     event.Snapshot
	emitted  bool

	enabledMu sync.RWMutex
	enabled   bool
}

// New creates a Processor with the given options. Out-of-range values are
// clamped to their minimums.
func New(opts Options) *Processor {
	if opts.FrameSkip < 1 {
		opts.FrameSkip = 1
	}
	if opts.BufferSize < 1 {
		opts.BufferSize = 1
	}
	if opts.GraceFrames < 0 {
		opts.GraceFrames = 0
	}
	return &Processor{
		opts:    opts,
		filter:  fingers.NewFilter(opts.BufferSize),
		swipes:  gesture.NewSwipeDetector(opts.BufferSize, opts.GestureThreshold),
		tracks:  make(map[event.HandLabel]*track),
		enabled: true,
	}
}

// SetEnabled pauses or resumes processing. While paused, frames are
// ignored entirely and no history advances.
func (p *Processor) SetEnabled(enabled bool) {
	p.enabledMu.Lock()
	defer p.enabledMu.Unlock()
	p.enabled = enabled
}

// IsEnabled reports whether the processor is accepting frames.
func (p *Processor) IsEnabled() bool {
	p.enabledMu.RLock()
	defer p.enabledMu.RUnlock()
	return p.enabled
}

// Process runs one frame's detections through the pipeline and returns the
// assembled snapshot plus whether it differs from the last one returned.
// Frames dropped by the skip policy report no change and touch no history.
func (p *Processor) Process(hands []detector.HandLandmarks) (event.Snapshot, bool) {
	if !p.IsEnabled() {
		return event.Snapshot{}, false
	}

	p.frameMod = (p.frameMod + 1) % p.opts.FrameSkip
	if p.frameMod != 0 {
		return event.Snapshot{}, false
	}

	seen := make(map[event.HandLabel]bool, len(hands))
	for i := range hands {
		hand := &hands[i]
		label := hand.Handedness
		seen[label] = true

		raw := fingers.Classify(hand)
		stable, _ := p.filter.Update(label, raw)

		pos := hand.Position()
		g := p.swipes.Update(label, gesture.Point{X: pos.X, Y: pos.Y})

		tr, ok := p.tracks[label]
		if !ok {
			tr = &track{}
			p.tracks[label] = tr
		}
		tr.state = event.HandState{Label: label, Fingers: stable, Gesture: g}
		tr.missed = 0
	}

	// Age out hands missing from this frame. Their last stable state
	// persists (gesture cleared, it is edge-triggered) until the grace
	// window runs out, then all of their history is dropped so a
	// returning hand starts fresh.
	for label, tr := range p.tracks {
		if seen[label] {
			continue
		}
		tr.missed++
		if tr.missed > p.opts.GraceFrames {
			delete(p.tracks, label)
			p.filter.Reset(label)
			p.swipes.Reset(label)
			continue
		}
		tr.state.Gesture = event.GestureNone
	}

	snap := p.assemble()
	if !p.emitted && len(snap.Hands) == 0 {
		// Nothing has ever been visible; stay quiet until a hand shows up.
		return event.Snapshot{}, false
	}
	if p.emitted && snap.Equal(p.last) {
		return event.Snapshot{}, false
	}
	p.last = snap
	p.emitted = true
	return snap, true
}

// assemble builds a snapshot in fixed label order (left, then right) so
// equality checks and serialized output are stable across frames.
func (p *Processor) assemble() event.Snapshot {
	var snap event.Snapshot
	for _, label := range []event.HandLabel{event.Left, event.Right} {
		if tr, ok := p.tracks[label]; ok {
			snap.Hands = append(snap.Hands, tr.state)
		}
	}
	return snap
}
