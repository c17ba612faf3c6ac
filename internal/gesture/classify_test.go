package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ayusman/handgraph/internal/detector"
)

func TestClassifier_Pinch(t *testing.T) {
	c := DefaultClassifier()

	t.Run("pinch pose is detected", func(t *testing.T) {
		h := detector.PinchLandmarks()
		s := c.Pinch(&h)

		assert.True(t, c.IsPinch(s))
		assert.Less(t, s.Distance, 0.03)
		assert.Equal(t, 100.0, s.Confidence)
		assert.InDelta(t, 0.61, s.Midpoint.X, 1e-9)
		assert.InDelta(t, 0.505, s.Midpoint.Y, 1e-9)
	})

	t.Run("open palm is not a pinch", func(t *testing.T) {
		h := detector.OpenPalmLandmarks()
		s := c.Pinch(&h)

		assert.False(t, c.IsPinch(s))
		assert.Equal(t, 0.0, s.Confidence)
	})

	t.Run("depth is down-weighted", func(t *testing.T) {
		h := detector.OpenPalmLandmarks()
		h.Points[detector.ThumbTip] = detector.Point3D{X: 0.5, Y: 0.5, Z: 0.1}
		h.Points[detector.IndexTip] = detector.Point3D{X: 0.5, Y: 0.5, Z: 0}

		s := c.Pinch(&h)
		assert.InDelta(t, 0.05, s.Distance, 1e-9)
	})

	t.Run("confidence is linear between threshold and ceiling", func(t *testing.T) {
		h := detector.OpenPalmLandmarks()
		h.Points[detector.ThumbTip] = detector.Point3D{X: 0.5, Y: 0.5}
		h.Points[detector.IndexTip] = detector.Point3D{X: 0.59, Y: 0.5}

		s := c.Pinch(&h)
		assert.InDelta(t, 50.0, s.Confidence, 1e-6)
		assert.False(t, c.IsPinch(s))
	})
}

func TestPoint(t *testing.T) {
	tests := []struct {
		name string
		hand detector.HandLandmarks
		want bool
	}{
		{"pointing", detector.PointingLandmarks(), true},
		{"fist", detector.FistLandmarks(), false},
		{"open palm", detector.OpenPalmLandmarks(), false},
		{"pinch", detector.PinchLandmarks(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Point(&tt.hand)
			assert.Equal(t, tt.want, got.Pointing)
			assert.Equal(t, tt.hand.Points[detector.IndexTip], got.Position)
		})
	}
}

func TestOpenness(t *testing.T) {
	open := detector.OpenPalmLandmarks()
	fist := detector.FistLandmarks()

	assert.Greater(t, Openness(&open), Openness(&fist))
	assert.InDelta(t, 1.846, Openness(&open), 0.01)
}
