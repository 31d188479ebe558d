// Package event defines the stable hand-state events emitted by the
// processing engine and consumed by the dispatcher.
package event

import (
	"encoding/json"
	"strings"
)

// HandLabel identifies which physical hand a state belongs to.
// Values follow the MediaPipe handedness convention.
type HandLabel string

const (
	// Left is the left hand as classified by the detector.
	Left HandLabel = "Left"
	// Right is the right hand as classified by the detector.
	Right HandLabel = "Right"
)

// NumFingers is the number of entries in a FingerVector (thumb..pinky).
const NumFingers = 5

// FingerVector holds one binary value per finger, thumb first.
// 1 means extended, 0 means folded.
type FingerVector [NumFingers]int

// Gesture is a recognized directional swipe.
type Gesture string

const (
	// GestureNone means no gesture was detected.
	GestureNone Gesture = ""
	// SwipeLeft is a horizontal swipe toward decreasing x.
	SwipeLeft Gesture = "swipe_left"
	// SwipeRight is a horizontal swipe toward increasing x.
	SwipeRight Gesture = "swipe_right"
	// SwipeUp is a vertical swipe toward decreasing y (image coordinates).
	SwipeUp Gesture = "swipe_up"
	// SwipeDown is a vertical swipe toward increasing y.
	SwipeDown Gesture = "swipe_down"
)

// HandState is the debounced, externally visible state of one hand.
// Gesture is set only on the frame where a swipe crosses the threshold.
type HandState struct {
	Label   HandLabel
	Fingers FingerVector
	Gesture Gesture
}

// Snapshot is the set of stable hand states for all visible hands at one
// instant. Hands are kept in a fixed label order so value comparison and
// serialization are deterministic.
type Snapshot struct {
	Hands []HandState
}

// Equal reports whether two snapshots carry the same hand states.
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s.Hands) != len(other.Hands) {
		return false
	}
	for i := range s.Hands {
		if s.Hands[i] != other.Hands[i] {
			return false
		}
	}
	return true
}

// jsonHand is the wire form of a HandState.
type jsonHand struct {
	Label   string  `json:"label"`
	Fingers [5]int  `json:"fingers"`
	Gesture *string `json:"gesture"`
}

// MarshalJSON serializes the snapshot as {"hands":[...]} with lowercase
// labels and a null gesture when none fired.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	hands := make([]jsonHand, len(s.Hands))
	for i, h := range s.Hands {
		hands[i] = jsonHand{
			Label:   strings.ToLower(string(h.Label)),
			Fingers: h.Fingers,
		}
		if h.Gesture != GestureNone {
			g := string(h.Gesture)
			hands[i].Gesture = &g
		}
	}
	return json.Marshal(map[string]any{"hands": hands})
}

// UnmarshalJSON restores a snapshot from its wire form.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var wire struct {
		Hands []jsonHand `json:"hands"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	s.Hands = make([]HandState, len(wire.Hands))
	for i, h := range wire.Hands {
		state := HandState{
			Fingers: h.Fingers,
		}
		switch strings.ToLower(h.Label) {
		case "left":
			state.Label = Left
		case "right":
			state.Label = Right
		default:
			state.Label = HandLabel(h.Label)
		}
		if h.Gesture != nil {
			state.Gesture = Gesture(*h.Gesture)
		}
		s.Hands[i] = state
	}
	return nil
}
