package interact

import (
	"math"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/handgraph/internal/detector"
)

type dragPhase int

const (
	dragIdle     dragPhase = iota
	dragEmpty              // pinching, nothing under the pinch
	dragHolding            // node pinned and following the pinch
	dragReleased           // node released, grace window open
)

func (p dragPhase) String() string {
	switch p {
	case dragEmpty:
		return "pinching"
	case dragHolding:
		return "dragging"
	case dragReleased:
		return "released"
	default:
		return "idle"
	}
}

// dragController pins at most one node and moves it with the pinch midpoint.
type dragController struct {
	phase      dragPhase
	node       NodeID
	position   r3.Vec // pinned position, owned by the engine while holding
	anchor     detector.Point3D
	lastMove   r3.Vec
	releasedAt time.Time
}

// holding reports whether a node is currently pinned.
func (d *dragController) holding() (NodeID, bool) {
	return d.node, d.phase == dragHolding
}

// updateDrag advances the drag controller by one tick given the hysteresis decision
// and the current pinch sample.
func (e *Engine) updateDrag(pinching bool, mid detector.Point3D, now time.Time) []Command {
	d := &e.drag

	if d.phase == dragReleased && now.Sub(d.releasedAt) >= e.cfg.ReleaseGrace {
		d.clear()
	}

	switch d.phase {
	case dragIdle:
		if pinching {
			return e.acquire(mid)
		}

	case dragEmpty:
		if !pinching {
			d.clear()
		}

	case dragHolding:
		if pinching {
			return e.move(mid)
		}
		return e.release(now)

	case dragReleased:
		if pinching {
			return e.regrab(mid)
		}
	}
	return nil
}

// acquire resolves the node under the pinch midpoint and pins it.
func (e *Engine) acquire(mid detector.Point3D) []Command {
	d := &e.drag
	sx, sy := e.toScreen(mid)

	node, pos, ok := e.grabTarget(sx, sy)
	if !ok {
		d.phase = dragEmpty
		return nil
	}
	return e.hold(node, pos, mid)
}

// regrab picks the released node back up without a target search.
func (e *Engine) regrab(mid detector.Point3D) []Command {
	d := &e.drag
	pos, ok := e.scene.NodePosition(d.node)
	if !ok {
		d.clear()
		return e.acquire(mid)
	}
	return e.hold(d.node, pos, mid)
}

func (e *Engine) hold(node NodeID, pos r3.Vec, mid detector.Point3D) []Command {
	d := &e.drag
	d.phase = dragHolding
	d.node = node
	d.position = pos
	d.anchor = mid
	d.lastMove = r3.Vec{}

	e.log.Debug("node grabbed", zap.Int("node", int(node)))
	return []Command{PinNode{Node: node, Position: pos, Grab: true}}
}

// move translates the 2D pinch delta into a world displacement of the
// pinned node using the camera basis, scaled by distance to the camera.
func (e *Engine) move(mid detector.Point3D) []Command {
	d := &e.drag

	dx := mid.X - d.anchor.X
	dy := mid.Y - d.anchor.Y
	if e.cfg.MirrorX {
		dx = -dx
	}

	cam := e.scene.Camera()
	dist := r3.Norm(r3.Sub(cam.Position, d.position))
	delta := r3.Scale(e.cfg.DragSensitivity*dist, r3.Sub(r3.Scale(dx, cam.Right), r3.Scale(dy, cam.Up)))

	d.position = r3.Add(d.position, delta)
	d.anchor = mid
	d.lastMove = delta

	return []Command{PinNode{Node: d.node, Position: d.position}}
}

// release hands the node back to physics with a toss impulse. The node id
// is kept for the grace window.
func (e *Engine) release(now time.Time) []Command {
	d := &e.drag
	cmds := releaseCommands(d.node, d.lastMove, e.cfg.ReleaseImpulse)

	d.phase = dragReleased
	d.releasedAt = now
	d.lastMove = r3.Vec{}

	e.log.Debug("node released", zap.Int("node", int(d.node)), zap.Float64("speed", r3.Norm(cmds[1].(SetVelocity).Velocity)))
	return cmds
}

func releaseCommands(node NodeID, lastMove r3.Vec, impulse float64) []Command {
	return []Command{
		UnpinNode{Node: node},
		SetVelocity{Node: node, Velocity: r3.Scale(impulse, lastMove)},
		Reheat{},
	}
}

func (d *dragController) clear() {
	*d = dragController{}
}

// grabTarget returns the closest node whose projected radius plus the
// acquire tolerance covers (sx, sy).
func (e *Engine) grabTarget(sx, sy float64) (NodeID, r3.Vec, bool) {
	right := e.scene.Camera().Right

	var (
		best    Node
		bestD   = math.Inf(1)
		found   bool
		edgeOff = r3.Scale(e.cfg.NodeRadius, right)
	)
	for _, n := range e.scene.Nodes() {
		cx, cy, ok := e.scene.Project(n.Position)
		if !ok {
			continue
		}
		ex, ey, ok := e.scene.Project(r3.Add(n.Position, edgeOff))
		if !ok {
			continue
		}
		radius := math.Hypot(ex-cx, ey-cy)
		d := math.Hypot(sx-cx, sy-cy)
		if d <= radius+e.cfg.AcquireTolerancePx && d < bestD {
			best, bestD, found = n, d, true
		}
	}
	return best.ID, best.Position, found
}
