// Package gesture classifies directional hand motion into swipe events.
package gesture

import (
	"math"

	"github.com/ayusman/mudra/internal/event"
)

// Point is a hand reference position in normalized frame coordinates.
type Point struct {
	X float64
	Y float64
}

// SwipeDetector detects directional swipes from a sliding window of hand
// positions, one window per hand label.
//
// A swipe fires when the window is full and the displacement between its
// oldest and newest sample exceeds the threshold on the dominant axis.
// The window is cleared on every trigger so a sustained drift past the
// threshold emits exactly once until fresh displacement accumulates.
type SwipeDetector struct {
	depth     int
	threshold float64
	history   map[event.HandLabel][]Point
}

// NewSwipeDetector creates a SwipeDetector with the given window depth and
// normalized displacement threshold.
func NewSwipeDetector(depth int, threshold float64) *SwipeDetector {
	if depth < 1 {
		depth = 1
	}
	return &SwipeDetector{
		depth:     depth,
		threshold: threshold,
		history:   make(map[event.HandLabel][]Point),
	}
}

// Update pushes a position into the label's window and returns the swipe
// that fired, or GestureNone.
func (d *SwipeDetector) Update(label event.HandLabel, p Point) event.Gesture {
	buf := append(d.history[label], p)
	if len(buf) > d.depth {
		buf = buf[len(buf)-d.depth:]
	}
	d.history[label] = buf

	if len(buf) < d.depth || d.depth < 2 {
		return event.GestureNone
	}

	dx := buf[len(buf)-1].X - buf[0].X
	dy := buf[len(buf)-1].Y - buf[0].Y

	var g event.Gesture
	if math.Abs(dx) > math.Abs(dy) {
		if math.Abs(dx) > d.threshold {
			if dx > 0 {
				g = event.SwipeRight
			} else {
				g = event.SwipeLeft
			}
		}
	} else {
		if math.Abs(dy) > d.threshold {
			if dy > 0 {
				g = event.SwipeDown
			} else {
				g = event.SwipeUp
			}
		}
	}

	if g != event.GestureNone {
		// Edge trigger: clear the window so this motion cannot re-fire.
		d.history[label] = d.history[label][:0]
	}

	return g
}

// Reset drops all position history for a label.
func (d *SwipeDetector) Reset(label event.HandLabel) {
	delete(d.history, label)
}
