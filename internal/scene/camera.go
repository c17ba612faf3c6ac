package scene

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/handgraph/internal/interact"
)

var worldUp = r3.Vec{Y: 1}

// nearPlane is the minimum view depth for a projectable point.
const nearPlane = 1e-3

// camera is a perspective look-at camera.
type camera struct {
	position r3.Vec
	target   r3.Vec
	fov      float64 // vertical, radians
	width    float64
	height   float64
}

// basis returns the forward, right and up unit vectors of the view.
func (c *camera) basis() (forward, right, up r3.Vec) {
	view := r3.Sub(c.target, c.position)
	if r3.Norm(view) == 0 {
		view = r3.Vec{Z: -1}
	}
	forward = r3.Unit(view)

	side := r3.Cross(forward, worldUp)
	if r3.Norm(side) < 1e-9 {
		// looking straight up or down
		side = r3.Vec{X: 1}
	}
	right = r3.Unit(side)
	up = r3.Cross(right, forward)
	return forward, right, up
}

func (c *camera) pose() interact.CameraPose {
	_, right, up := c.basis()
	return interact.CameraPose{
		Position: c.position,
		Target:   c.target,
		Right:    right,
		Up:       up,
	}
}

// project maps a world point to screen pixels with y growing downward.
func (c *camera) project(p r3.Vec) (float64, float64, bool) {
	forward, right, up := c.basis()
	v := r3.Sub(p, c.position)

	depth := r3.Dot(v, forward)
	if depth <= nearPlane {
		return 0, 0, false
	}

	focal := (c.height / 2) / math.Tan(c.fov/2)
	x := c.width/2 + r3.Dot(v, right)*focal/depth
	y := c.height/2 - r3.Dot(v, up)*focal/depth
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return 0, 0, false
	}
	return x, y, true
}
