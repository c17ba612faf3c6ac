package interact

import (
	"math"

	"github.com/ayusman/handgraph/internal/detector"
	"github.com/ayusman/handgraph/internal/gesture"
)

// rotationIntent decides between rotate and zoom from the openness of the
// two hands. A lower exit threshold applies while rotation is active.
func rotationIntent(o1, o2 float64, rotating bool, cfg *Config) bool {
	threshold := cfg.RotateEnterThreshold
	if rotating {
		threshold = cfg.RotateExitThreshold
	}
	return math.Abs(o1-o2) > threshold
}

// controlHand returns the index of the more closed hand.
func controlHand(o1, o2 float64) int {
	if o2 < o1 {
		return 1
	}
	return 0
}

// twoHands routes a two-hand tick to the rotation or zoom controller.
func (e *Engine) twoHands(a, b *detector.HandLandmarks) ([]Command, Status) {
	hands := [2]*detector.HandLandmarks{a, b}
	o1, o2 := gesture.Openness(a), gesture.Openness(b)
	cam := e.scene.Camera()

	if rotationIntent(o1, o2, e.rotate.active, &e.cfg) {
		if e.zoom.active {
			e.log.Debug("two-hand mode: rotate")
		}
		e.zoom.deactivate()

		control := hands[controlHand(o1, o2)]
		status := Status{
			State:      StateRotation,
			Action:     "Rotating view",
			Confidence: "Mode: Rotate",
		}
		pos, ok := e.rotate.update(control.Points[detector.MiddleMCP], cam, &e.cfg)
		if !ok {
			return nil, status
		}
		return []Command{SetCamera{Position: pos}}, status
	}

	if e.rotate.active {
		e.log.Debug("two-hand mode: zoom")
	}
	e.rotate.deactivate()

	status := Status{
		State:      StateTwoHands,
		Action:     "Zoom ready",
		Confidence: "Mode: Zoom",
	}
	dist := wristDistance(a, b)
	pos, ok := e.zoom.update(dist, cam, &e.cfg)
	if !ok {
		return nil, status
	}
	if e.zoom.smoothed > 0 {
		status.Action = "Zooming in"
	} else {
		status.Action = "Zooming out"
	}
	return []Command{SetCamera{Position: pos}}, status
}

// wristDistance is the image-plane distance between two wrists.
func wristDistance(a, b *detector.HandLandmarks) float64 {
	wa, wb := a.Points[detector.Wrist], b.Points[detector.Wrist]
	return math.Hypot(wa.X-wb.X, wa.Y-wb.Y)
}
