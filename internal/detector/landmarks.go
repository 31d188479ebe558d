// Package detector provides hand detection interfaces and types for the
// gesture event pipeline.
package detector

import (
	"fmt"

	"github.com/ayusman/mudra/internal/event"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D represents a 3D point with x, y normalized to [0,1] relative to
// the frame and z relative to depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks for one detected hand.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness event.HandLabel       `json:"handedness"`
	Score      float64               `json:"score"`
}

// Position returns the hand's reference point for motion tracking.
// The wrist landmark is used, matching the swipe detector's convention.
func (h *HandLandmarks) Position() Point3D {
	return h.Points[Wrist]
}

// validateShape rejects detections with the wrong number of points before
// they reach any downstream component.
func validateShape(points []Point3D) error {
	if len(points) != NumLandmarks {
		return fmt.Errorf("malformed hand landmarks: got %d points, want %d", len(points), NumLandmarks)
	}
	return nil
}
