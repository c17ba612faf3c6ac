package scene

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/handgraph/internal/interact"
)

// ErrUnknownNode is returned when a command references a node that does not exist.
var ErrUnknownNode = errors.New("unknown node")

// Options configure a Graph.
type Options struct {
	Width      float64
	Height     float64
	FOVDegrees float64
	// Radius of the sphere new nodes are placed on.
	Radius float64
	// CameraDistance is the initial distance of the camera from the origin.
	CameraDistance float64
}

// DefaultOptions returns a 1280x720 view with a 75 degree field of view.
func DefaultOptions() Options {
	return Options{
		Width:          1280,
		Height:         720,
		FOVDegrees:     75,
		Radius:         150,
		CameraDistance: 500,
	}
}

type node struct {
	data     NodeData
	position r3.Vec
	velocity r3.Vec
	pinned   bool
}

type link struct {
	source, target int
}

// Graph owns node positions and the camera. Node handles are indices into
// the node table and stay valid for the life of the Graph.
// It is safe for concurrent use.
type Graph struct {
	mu    sync.RWMutex
	nodes []node
	links []link
	index map[string]interact.NodeID
	cam   camera
	alpha float64
}

// New builds a Graph from graph data. Links to unknown ids are dropped.
func New(data *GraphData, opts Options) *Graph {
	def := DefaultOptions()
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = def.Width, def.Height
	}
	if opts.FOVDegrees <= 0 || opts.FOVDegrees >= 180 {
		opts.FOVDegrees = def.FOVDegrees
	}
	if opts.Radius <= 0 {
		opts.Radius = def.Radius
	}
	if opts.CameraDistance <= 0 {
		opts.CameraDistance = def.CameraDistance
	}

	g := &Graph{
		index: make(map[string]interact.NodeID),
		cam: camera{
			position: r3.Vec{Z: opts.CameraDistance},
			fov:      opts.FOVDegrees * math.Pi / 180,
			width:    opts.Width,
			height:   opts.Height,
		},
		alpha: 1,
	}
	if data == nil {
		return g
	}

	positions := fibonacciSphere(len(data.Nodes), opts.Radius)
	for i, n := range data.Nodes {
		g.index[n.ID] = interact.NodeID(i)
		pos := positions[i]
		if n.IsCentral {
			pos = r3.Vec{}
		}
		g.nodes = append(g.nodes, node{data: n, position: pos})
	}
	for _, l := range data.Links {
		s, ok1 := g.index[l.Source]
		t, ok2 := g.index[l.Target]
		if !ok1 || !ok2 || s == t {
			continue
		}
		g.links = append(g.links, link{source: int(s), target: int(t)})
	}
	return g
}

// fibonacciSphere spreads n points evenly over a sphere.
func fibonacciSphere(n int, radius float64) []r3.Vec {
	golden := math.Pi * (3 - math.Sqrt(5))
	out := make([]r3.Vec, n)
	for i := range out {
		y := 1 - 2*(float64(i)+0.5)/float64(n)
		r := math.Sqrt(1 - y*y)
		theta := golden * float64(i)
		out[i] = r3.Scale(radius, r3.Vec{X: math.Cos(theta) * r, Y: y, Z: math.Sin(theta) * r})
	}
	return out
}

// Project implements interact.Scene.
func (g *Graph) Project(p r3.Vec) (float64, float64, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cam.project(p)
}

// Viewport implements interact.Scene.
func (g *Graph) Viewport() (float64, float64) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cam.width, g.cam.height
}

// SetViewport resizes the view.
func (g *Graph) SetViewport(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cam.width, g.cam.height = width, height
}

// Camera implements interact.Scene.
func (g *Graph) Camera() interact.CameraPose {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cam.pose()
}

// Nodes implements interact.Scene.
func (g *Graph) Nodes() []interact.Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]interact.Node, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = interact.Node{ID: interact.NodeID(i), Position: n.position}
	}
	return out
}

// NodePosition implements interact.Scene.
func (g *Graph) NodePosition(id interact.NodeID) (r3.Vec, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.valid(id) {
		return r3.Vec{}, false
	}
	return g.nodes[id].position, true
}

// Node returns the data a node was loaded with.
func (g *Graph) Node(id interact.NodeID) (NodeData, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.valid(id) {
		return NodeData{}, false
	}
	return g.nodes[id].data, true
}

// Lookup resolves a graph_data id to a node handle.
func (g *Graph) Lookup(key string) (interact.NodeID, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := g.index[key]
	return id, ok
}

func (g *Graph) valid(id interact.NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes)
}

// Apply executes engine commands. Commands for unknown nodes are skipped
// and reported in the returned error.
func (g *Graph) Apply(cmds []interact.Command) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	var errs []error
	for _, c := range cmds {
		if err := g.apply(c); err != nil {
			errs = append(errs, fmt.Errorf("%v: %w", c, err))
		}
	}
	return errors.Join(errs...)
}

func (g *Graph) apply(c interact.Command) error {
	switch c := c.(type) {
	case interact.SetCamera:
		g.cam.position = c.Position
		g.cam.target = c.Target
	case interact.PinNode:
		if !g.valid(c.Node) {
			return ErrUnknownNode
		}
		n := &g.nodes[c.Node]
		n.pinned = true
		n.position = c.Position
		n.velocity = r3.Vec{}
	case interact.UnpinNode:
		if !g.valid(c.Node) {
			return ErrUnknownNode
		}
		g.nodes[c.Node].pinned = false
	case interact.SetVelocity:
		if !g.valid(c.Node) {
			return ErrUnknownNode
		}
		g.nodes[c.Node].velocity = c.Velocity
	case interact.Reheat:
		g.alpha = 1
	case interact.Activate:
		if !g.valid(c.Node) {
			return ErrUnknownNode
		}
	}
	return nil
}
