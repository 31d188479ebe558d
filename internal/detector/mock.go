package detector

import (
	"sync"

	"github.com/ayusman/mudra/internal/event"
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It returns pre-configured hands, either a fixed set or a per-frame
// sequence.
type MockDetector struct {
	mu       sync.Mutex
	hands    []HandLandmarks
	sequence [][]HandLandmarks
	err      error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by every Detect call.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetSequence sets per-frame detection results. Each Detect call consumes
// one entry; when the sequence is exhausted Detect falls back to the
// fixed hands set.
func (m *MockDetector) SetSequence(frames [][]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = frames
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if len(m.sequence) > 0 {
		hands := m.sequence[0]
		m.sequence = m.sequence[1:]
		return hands, nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Shifted returns a copy of the landmarks translated by (dx, dy).
// Useful for building swipe position sequences in tests.
func Shifted(h HandLandmarks, dx, dy float64) HandLandmarks {
	out := h
	for i := range out.Points {
		out.Points[i].X += dx
		out.Points[i].Y += dy
	}
	return out
}

// Mirrored returns a copy of the landmarks reflected across the vertical
// center line with the handedness flipped.
func Mirrored(h HandLandmarks) HandLandmarks {
	out := h
	for i := range out.Points {
		out.Points[i].X = 1 - out.Points[i].X
	}
	if h.Handedness == event.Right {
		out.Handedness = event.Left
	} else {
		out.Handedness = event.Right
	}
	return out
}

// OpenPalmLandmarks returns a preset right hand with all five fingers
// extended.
func OpenPalmLandmarks() HandLandmarks {
	lm := HandLandmarks{
		Handedness: event.Right,
		Score:      0.95,
	}

	lm.Points[Wrist] = Point3D{X: 0.50, Y: 0.80}

	// Thumb extended: tip x below IP x, the right-hand extension direction
	lm.Points[ThumbCMC] = Point3D{X: 0.46, Y: 0.74}
	lm.Points[ThumbMCP] = Point3D{X: 0.41, Y: 0.69}
	lm.Points[ThumbIP] = Point3D{X: 0.36, Y: 0.64}
	lm.Points[ThumbTip] = Point3D{X: 0.30, Y: 0.60}

	// Index finger extended upward
	lm.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68}
	lm.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55}
	lm.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45}
	lm.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35}

	// Middle finger extended upward
	lm.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66}
	lm.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52}
	lm.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40}
	lm.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28}

	// Ring finger extended upward
	lm.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68}
	lm.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55}
	lm.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45}
	lm.Points[RingTip] = Point3D{X: 0.42, Y: 0.35}

	// Pinky finger extended upward
	lm.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70}
	lm.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60}
	lm.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50}
	lm.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42}

	return lm
}

// FistLandmarks returns a preset right hand with all fingers folded.
func FistLandmarks() HandLandmarks {
	lm := HandLandmarks{
		Handedness: event.Right,
		Score:      0.95,
	}

	lm.Points[Wrist] = Point3D{X: 0.50, Y: 0.80}

	// Thumb folded across the palm
	lm.Points[ThumbCMC] = Point3D{X: 0.46, Y: 0.74}
	lm.Points[ThumbMCP] = Point3D{X: 0.44, Y: 0.70}
	lm.Points[ThumbIP] = Point3D{X: 0.45, Y: 0.68}
	lm.Points[ThumbTip] = Point3D{X: 0.48, Y: 0.67}

	// Curled fingers: tips sit below their PIP joints
	curl := func(mcpIdx int, x float64) {
		lm.Points[mcpIdx] = Point3D{X: x, Y: 0.68}
		lm.Points[mcpIdx+1] = Point3D{X: x, Y: 0.62}
		lm.Points[mcpIdx+2] = Point3D{X: x - 0.01, Y: 0.66}
		lm.Points[mcpIdx+3] = Point3D{X: x - 0.02, Y: 0.70}
	}
	curl(IndexMCP, 0.55)
	curl(MiddleMCP, 0.50)
	curl(RingMCP, 0.45)
	curl(PinkyMCP, 0.40)

	return lm
}

// ThumbsUpLandmarks returns a preset right hand with only the thumb
// extended.
func ThumbsUpLandmarks() HandLandmarks {
	lm := FistLandmarks()

	lm.Points[ThumbCMC] = Point3D{X: 0.46, Y: 0.74}
	lm.Points[ThumbMCP] = Point3D{X: 0.42, Y: 0.66}
	lm.Points[ThumbIP] = Point3D{X: 0.39, Y: 0.56}
	lm.Points[ThumbTip] = Point3D{X: 0.35, Y: 0.46}

	return lm
}

// PointingLandmarks returns a preset right hand with only the index finger
// extended.
func PointingLandmarks() HandLandmarks {
	lm := FistLandmarks()

	lm.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68}
	lm.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55}
	lm.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45}
	lm.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35}

	return lm
}
