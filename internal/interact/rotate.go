package interact

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/handgraph/internal/detector"
)

// Polar angle limits. clampPolar pins values onto these bounds, so the
// reachable range is the closed [minPolar, maxPolar]; both ends sit 0.1 rad
// off the poles, which is what keeps the up vector from flipping.
const (
	minPolar = 0.1
	maxPolar = math.Pi - 0.1
)

// rotateController orbits the camera around the origin with the motion of
// the control hand.
type rotateController struct {
	active   bool
	prev     detector.Point3D
	smoothed [2]float64
}

// update returns the new camera position. The first tick after activation
// only records the reference position.
func (r *rotateController) update(p detector.Point3D, cam CameraPose, cfg *Config) (r3.Vec, bool) {
	if !r.active {
		r.active = true
		r.prev = p
		return r3.Vec{}, false
	}

	raw := [2]float64{p.X - r.prev.X, p.Y - r.prev.Y}
	r.prev = p
	for i := range raw {
		r.smoothed[i] = ema(r.smoothed[i], raw[i], cfg.SmoothingAlpha)
	}

	return orbit(cam.Position, -r.smoothed[0]*cfg.RotateSensitivity, r.smoothed[1]*cfg.RotateSensitivity), true
}

func (r *rotateController) deactivate() {
	*r = rotateController{}
}

// orbit rotates pos around the origin by dAzimuth and dPolar radians.
// Polar is measured from +Y and azimuth from +Z toward +X.
func orbit(pos r3.Vec, dAzimuth, dPolar float64) r3.Vec {
	radius := r3.Norm(pos)
	if radius == 0 {
		return pos
	}

	polar := math.Acos(math.Max(-1, math.Min(1, pos.Y/radius)))
	azimuth := math.Atan2(pos.X, pos.Z)

	azimuth += dAzimuth
	polar = clampPolar(polar + dPolar)

	sinPolar := math.Sin(polar)
	return r3.Vec{
		X: radius * sinPolar * math.Sin(azimuth),
		Y: radius * math.Cos(polar),
		Z: radius * sinPolar * math.Cos(azimuth),
	}
}

func clampPolar(v float64) float64 {
	if math.IsNaN(v) {
		return math.Pi / 2
	}
	if v < minPolar {
		return minPolar
	}
	if v > maxPolar {
		return maxPolar
	}
	return v
}

// ema applies exponential smoothing with factor alpha.
func ema(prev, raw, alpha float64) float64 {
	return prev*(1-alpha) + raw*alpha
}
