package scene

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/handgraph/internal/interact"
)

// Simulation constants, per tick.
const (
	velocityDecay = 0.4
	alphaDecay    = 0.0228
	alphaMin      = 0.001
	linkDistance  = 60.0
	linkStrength  = 0.1
	restSpeed     = 1e-3
)

// Step advances the layout by one tick: link springs scaled by the current
// heat, then velocity integration with decay. Pinned nodes do not move.
// It reports whether anything is still moving.
func (g *Graph) Step() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.alpha >= alphaMin {
		for _, l := range g.links {
			a, b := &g.nodes[l.source], &g.nodes[l.target]
			delta := r3.Sub(b.position, a.position)
			dist := r3.Norm(delta)
			if dist == 0 {
				continue
			}
			force := r3.Scale((dist-linkDistance)/dist*linkStrength*g.alpha, delta)
			if !a.pinned {
				a.velocity = r3.Add(a.velocity, r3.Scale(0.5, force))
			}
			if !b.pinned {
				b.velocity = r3.Sub(b.velocity, r3.Scale(0.5, force))
			}
		}
		g.alpha += (0 - g.alpha) * alphaDecay
	}

	moving := g.alpha >= alphaMin
	for i := range g.nodes {
		n := &g.nodes[i]
		if n.pinned {
			n.velocity = r3.Vec{}
			continue
		}
		n.position = r3.Add(n.position, n.velocity)
		n.velocity = r3.Scale(1-velocityDecay, n.velocity)
		if r3.Norm(n.velocity) < restSpeed {
			n.velocity = r3.Vec{}
		} else {
			moving = true
		}
	}
	return moving
}

// NodeSnapshot is the JSON view of one node.
type NodeSnapshot struct {
	ID       interact.NodeID `json:"id"`
	Key      string          `json:"key"`
	Title    string          `json:"title"`
	Status   string          `json:"status,omitempty"`
	Position [3]float64      `json:"position"`
	Pinned   bool            `json:"pinned"`
}

// Snapshot is the JSON view of the scene.
type Snapshot struct {
	Camera struct {
		Position [3]float64 `json:"position"`
		Target   [3]float64 `json:"target"`
	} `json:"camera"`
	Nodes []NodeSnapshot `json:"nodes"`
	Links [][2]string    `json:"links"`
	Alpha float64        `json:"alpha"`
}

func vec3(v r3.Vec) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// Snapshot returns a copy of the current scene state.
func (g *Graph) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var s Snapshot
	s.Camera.Position = vec3(g.cam.position)
	s.Camera.Target = vec3(g.cam.target)
	s.Alpha = g.alpha

	s.Nodes = make([]NodeSnapshot, len(g.nodes))
	for i, n := range g.nodes {
		s.Nodes[i] = NodeSnapshot{
			ID:       interact.NodeID(i),
			Key:      n.data.ID,
			Title:    n.data.Title,
			Status:   n.data.Status,
			Position: vec3(n.position),
			Pinned:   n.pinned,
		}
	}
	s.Links = make([][2]string, len(g.links))
	for i, l := range g.links {
		s.Links[i] = [2]string{g.nodes[l.source].data.ID, g.nodes[l.target].data.ID}
	}
	return s
}
