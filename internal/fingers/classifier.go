// Package fingers turns hand landmarks into debounced finger-state vectors.
package fingers

import (
	"fmt"
	"math"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/event"
)

// minTipWristGap is the minimum vertical distance between a fingertip and
// the wrist for a finger to count as extended. Filters out half-curled
// fingers on a hand held close to horizontal.
const minTipWristGap = 0.1

// fingerTips are the tip landmark indices for index through pinky.
var fingerTips = [4]int{
	detector.IndexTip,
	detector.MiddleTip,
	detector.RingTip,
	detector.PinkyTip,
}

// Classify maps one hand's landmarks to a finger-up vector, thumb first.
//
// The thumb is judged on the x axis against its IP joint, with the
// comparison direction depending on handedness. The other four fingers are
// judged on the y axis: extended when tip, PIP and MCP are stacked in
// order and the tip is clear of the wrist.
func Classify(hand *detector.HandLandmarks) event.FingerVector {
	var v event.FingerVector
	points := hand.Points

	thumbTip := points[detector.ThumbTip]
	thumbIP := points[detector.ThumbIP]
	if hand.Handedness == event.Right {
		if thumbTip.X < thumbIP.X {
			v[0] = 1
		}
	} else {
		if thumbTip.X > thumbIP.X {
			v[0] = 1
		}
	}

	wrist := points[detector.Wrist]
	for i, tipIdx := range fingerTips {
		tip := points[tipIdx]
		pip := points[tipIdx-2]
		mcp := points[tipIdx-3]

		if tip.Y < pip.Y && pip.Y < mcp.Y && math.Abs(tip.Y-wrist.Y) > minTipWristGap {
			v[i+1] = 1
		}
	}

	return v
}

// poseNames maps finger vectors to human-readable pose names. Used by the
// window consumer overlay; the wire schema carries the raw vector.
var poseNames = map[event.FingerVector]string{
	{0, 1, 0, 0, 0}: "Pointing (Index)",
	{0, 1, 1, 0, 0}: "Victory Sign",
	{0, 1, 1, 1, 0}: "Three-Finger Salute",
	{0, 1, 0, 0, 1}: "Horns",
	{1, 1, 0, 0, 1}: "I love you",
	{0, 0, 1, 0, 0}: "Rude!!!",
	{0, 0, 0, 0, 0}: "Fist",
	{1, 0, 0, 0, 0}: "Thumbs Up",
	{1, 1, 1, 1, 1}: "Open Palm",
	{1, 0, 0, 0, 1}: "Shaka Sign",
}

// PoseName returns a display name for a finger vector, falling back to a
// finger count for unmapped combinations.
func PoseName(v event.FingerVector) string {
	if name, ok := poseNames[v]; ok {
		return name
	}
	count := 0
	for _, f := range v {
		count += f
	}
	return fmt.Sprintf("%d fingers", count)
}
