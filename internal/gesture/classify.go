package gesture

import (
	"math"

	"github.com/ayusman/handgraph/internal/detector"
)

// Classifier defaults.
const (
	DefaultPinchThreshold = 0.08
	DefaultPinchCeiling   = 0.10
	DefaultDepthWeight    = 0.5
)

// Classifier holds the tuning used to classify a single hand pose.
// It keeps no state between calls.
type Classifier struct {
	// PinchThreshold is the thumb-index distance below which a sample counts as a pinch.
	PinchThreshold float64 `yaml:"pinch_threshold"`
	// PinchCeiling is the distance mapped to 0% confidence.
	PinchCeiling float64 `yaml:"pinch_confidence_ceiling"`
	// DepthWeight scales the z axis, which is noisier than x and y.
	DepthWeight float64 `yaml:"depth_weight"`
}

// DefaultClassifier returns the stock classifier tuning.
func DefaultClassifier() Classifier {
	return Classifier{
		PinchThreshold: DefaultPinchThreshold,
		PinchCeiling:   DefaultPinchCeiling,
		DepthWeight:    DefaultDepthWeight,
	}
}

// PinchSample describes thumb/index proximity for one hand.
type PinchSample struct {
	Distance   float64
	Midpoint   detector.Point3D
	Confidence float64 // 0-100
}

// PointSample describes the pointing gesture for one hand.
type PointSample struct {
	Pointing bool
	Position detector.Point3D // index fingertip
}

// Pinch measures the thumb-tip to index-tip distance and its confidence.
func (c Classifier) Pinch(h *detector.HandLandmarks) PinchSample {
	thumb := h.Points[detector.ThumbTip]
	index := h.Points[detector.IndexTip]

	dx := thumb.X - index.X
	dy := thumb.Y - index.Y
	dz := (thumb.Z - index.Z) * c.DepthWeight
	dist := math.Sqrt(dx*dx + dy*dy + dz*dz)

	return PinchSample{
		Distance: dist,
		Midpoint: detector.Point3D{
			X: (thumb.X + index.X) / 2,
			Y: (thumb.Y + index.Y) / 2,
			Z: (thumb.Z + index.Z) / 2,
		},
		Confidence: c.pinchConfidence(dist),
	}
}

// IsPinch reports whether a single sample is below the pinch threshold.
func (c Classifier) IsPinch(s PinchSample) bool {
	return s.Distance < c.PinchThreshold
}

// pinchConfidence linearly remaps distance from the ceiling (0) down to the
// threshold (100), clamped.
func (c Classifier) pinchConfidence(dist float64) float64 {
	span := c.PinchCeiling - c.PinchThreshold
	if span <= 0 {
		if dist < c.PinchThreshold {
			return 100
		}
		return 0
	}
	conf := (c.PinchCeiling - dist) / span * 100
	return math.Max(0, math.Min(100, conf))
}

// Point detects a raised index finger with the other three fingers curled.
// Image y grows downward, so "raised" means a smaller y than the PIP joint.
func Point(h *detector.HandLandmarks) PointSample {
	p := h.Points
	raised := p[detector.IndexTip].Y < p[detector.IndexPIP].Y
	curled := p[detector.MiddleTip].Y > p[detector.MiddlePIP].Y &&
		p[detector.RingTip].Y > p[detector.RingPIP].Y &&
		p[detector.PinkyTip].Y > p[detector.PinkyPIP].Y

	return PointSample{
		Pointing: raised && curled,
		Position: p[detector.IndexTip],
	}
}

var opennessTips = [...]int{detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}

// Openness sums the image-plane distances from the wrist to the four
// non-thumb fingertips. Only meaningful when comparing two hands.
func Openness(h *detector.HandLandmarks) float64 {
	var sum float64
	for _, tip := range opennessTips {
		sum += h.Distance2D(detector.Wrist, tip)
	}
	return sum
}
