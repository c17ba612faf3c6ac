package interact

import (
	"math"
	"time"
)

// dwellSelector turns sustained pointing at one node into an Activate.
type dwellSelector struct {
	targeting bool
	target    NodeID
	start     time.Time
}

// update advances the selector by one tick. fired is set on the tick the
// dwell completes; progress is in [0,1].
func (d *dwellSelector) update(node NodeID, found bool, now time.Time, duration time.Duration) (fired bool, progress float64) {
	if !found {
		d.reset()
		return false, 0
	}

	if !d.targeting || node != d.target {
		d.targeting = true
		d.target = node
		d.start = now
		return false, 0
	}

	elapsed := now.Sub(d.start)
	if elapsed >= duration {
		d.reset()
		return true, 1
	}
	return false, float64(elapsed) / float64(duration)
}

func (d *dwellSelector) reset() {
	*d = dwellSelector{}
}

// nearestNode returns the node whose projected center is closest to the
// screen point (sx, sy) and within radius pixels. Nodes that cannot be
// projected are skipped.
func nearestNode(s Scene, sx, sy, radius float64) (NodeID, bool) {
	var (
		best  NodeID
		bestD = math.Inf(1)
		found bool
	)
	for _, n := range s.Nodes() {
		x, y, ok := s.Project(n.Position)
		if !ok {
			continue
		}
		d := math.Hypot(x-sx, y-sy)
		if d <= radius && d < bestD {
			best, bestD, found = n.ID, d, true
		}
	}
	return best, found
}
