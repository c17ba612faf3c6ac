package interact

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// zoomController dollies the camera toward or away from the origin as the
// distance between the two wrists changes.
type zoomController struct {
	active   bool
	prev     float64
	smoothed float64
}

// update returns the new camera position, or false when nothing moves.
// Hands moving apart zoom in.
func (z *zoomController) update(dist float64, cam CameraPose, cfg *Config) (r3.Vec, bool) {
	if !z.active {
		z.active = true
		z.prev = dist
		return r3.Vec{}, false
	}

	raw := dist - z.prev
	z.prev = dist
	z.smoothed = ema(z.smoothed, raw, cfg.SmoothingAlpha)

	if math.Abs(z.smoothed) <= cfg.ZoomDeadband {
		return r3.Vec{}, false
	}
	return dolly(cam.Position, z.smoothed*cfg.ZoomSensitivity, cfg.MinDistance, cfg.MaxDistance), true
}

func (z *zoomController) deactivate() {
	*z = zoomController{}
}

// dolly moves pos toward the origin by amount (away when negative) and
// clamps the resulting distance into [minDist, maxDist].
func dolly(pos r3.Vec, amount, minDist, maxDist float64) r3.Vec {
	radius := r3.Norm(pos)
	if radius == 0 {
		return r3.Vec{Z: minDist}
	}
	outward := r3.Scale(1/radius, pos)

	// Moving past the origin would flip the camera, so work on the
	// signed distance along the outward axis.
	dist := radius - amount
	dist = math.Max(minDist, math.Min(maxDist, dist))
	return r3.Scale(dist, outward)
}
