// Package detector provides hand detection interfaces and the hand landmark model.
package detector

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
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

// Handedness labels reported by the tracker.
const (
	HandLeft    = "Left"
	HandRight   = "Right"
	HandUnknown = "Unknown"
)

// Point3D represents a landmark position. X and Y are normalized image
// coordinates in [0,1]; Z is depth relative to the wrist.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vec returns the point as a gonum vector.
func (p Point3D) Vec() r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

// PointFromVec converts a gonum vector back into a Point3D.
func PointFromVec(v r3.Vec) Point3D {
	return Point3D{X: v.X, Y: v.Y, Z: v.Z}
}

func (p Point3D) finite() bool {
	for _, f := range [...]float64{p.X, p.Y, p.Z} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// HandLandmarks represents the 21 hand landmarks of one tracked hand.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Valid reports whether every landmark holds finite coordinates.
func (h *HandLandmarks) Valid() bool {
	if h == nil {
		return false
	}
	for _, p := range h.Points {
		if !p.finite() {
			return false
		}
	}
	return true
}

// Label returns the handedness, or HandUnknown when the tracker gave none.
func (h *HandLandmarks) Label() string {
	switch h.Handedness {
	case HandLeft, HandRight:
		return h.Handedness
	default:
		return HandUnknown
	}
}

// HandFrame is one hand observed during a sensor tick.
type HandFrame struct {
	Hand      HandLandmarks `json:"hand"`
	Timestamp time.Time     `json:"timestamp"`
}

// distance2D calculates the image-plane distance between two points.
func distance2D(a, b Point3D) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Distance2D returns the image-plane distance between landmarks i and j.
func (h *HandLandmarks) Distance2D(i, j int) float64 {
	return distance2D(h.Points[i], h.Points[j])
}
