// Package gesture turns raw hand landmarks into stabilized gesture measurements:
// temporal smoothing, pinch/point/openness classification and pinch hysteresis.
package gesture

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/handgraph/internal/detector"
)

// DefaultSmoothingWindow is the number of frames averaged by a Smoother.
const DefaultSmoothingWindow = 3

// Smoother keeps a short FIFO of poses for the single tracked hand and
// produces their landmark-wise mean.
type Smoother struct {
	window int
	frames []detector.HandLandmarks
}

// NewSmoother creates a Smoother averaging up to window frames.
// Non-positive windows fall back to DefaultSmoothingWindow.
func NewSmoother(window int) *Smoother {
	if window <= 0 {
		window = DefaultSmoothingWindow
	}
	return &Smoother{
		window: window,
		frames: make([]detector.HandLandmarks, 0, window),
	}
}

// Push appends a pose, dropping the oldest one when the window is full.
func (s *Smoother) Push(h detector.HandLandmarks) {
	if len(s.frames) >= s.window {
		// Shift buffer left by 1, removing oldest pose
		copy(s.frames, s.frames[1:])
		s.frames = s.frames[:s.window-1]
	}
	s.frames = append(s.frames, h)
}

// Current returns the smoothed pose. With a single buffered frame it is
// returned as is so motion starts immediately; ok is false when empty.
// Handedness and score come from the newest frame.
func (s *Smoother) Current() (detector.HandLandmarks, bool) {
	switch len(s.frames) {
	case 0:
		return detector.HandLandmarks{}, false
	case 1:
		return s.frames[0], true
	}

	newest := s.frames[len(s.frames)-1]
	out := detector.HandLandmarks{
		Handedness: newest.Handedness,
		Score:      newest.Score,
	}

	for i := 0; i < detector.NumLandmarks; i++ {
		// Running mean keeps constant input bit-for-bit unchanged.
		mean := s.frames[0].Points[i].Vec()
		for k := 1; k < len(s.frames); k++ {
			p := s.frames[k].Points[i].Vec()
			mean = r3.Add(mean, r3.Scale(1/float64(k+1), r3.Sub(p, mean)))
		}
		out.Points[i] = detector.PointFromVec(mean)
	}
	return out, true
}

// Len returns the number of buffered frames.
func (s *Smoother) Len() int {
	return len(s.frames)
}

// Reset empties the buffer.
func (s *Smoother) Reset() {
	s.frames = s.frames[:0]
}
