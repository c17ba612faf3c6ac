package interact

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/handgraph/internal/detector"
	"github.com/ayusman/handgraph/internal/timeutil"
)

const tick = 33 * time.Millisecond

// fakeScene is a 1000x1000 orthographic view with the camera on +Z looking
// at the origin. World (x, y) maps to screen (500+x, 500-y).
type fakeScene struct {
	cam   CameraPose
	nodes []Node
}

func newFakeScene(nodes ...Node) *fakeScene {
	return &fakeScene{
		cam: CameraPose{
			Position: r3.Vec{Z: 500},
			Right:    r3.Vec{X: 1},
			Up:       r3.Vec{Y: 1},
		},
		nodes: nodes,
	}
}

func (s *fakeScene) Project(p r3.Vec) (float64, float64, bool) {
	if p.Z >= s.cam.Position.Z {
		return 0, 0, false
	}
	return 500 + p.X, 500 - p.Y, true
}

func (s *fakeScene) Viewport() (float64, float64) { return 1000, 1000 }
func (s *fakeScene) Camera() CameraPose            { return s.cam }
func (s *fakeScene) Nodes() []Node                 { return s.nodes }

func (s *fakeScene) NodePosition(id NodeID) (r3.Vec, bool) {
	for _, n := range s.nodes {
		if n.ID == id {
			return n.Position, true
		}
	}
	return r3.Vec{}, false
}

// Node 1 sits under the pinch preset midpoint, node 3 under the pointing
// preset index tip, node 2 far from both.
var (
	pinchNode = Node{ID: 1, Position: r3.Vec{X: 110, Y: -5}}
	farNode   = Node{ID: 2, Position: r3.Vec{X: -400, Y: -400}}
	pointNode = Node{ID: 3, Position: r3.Vec{X: 80, Y: 100}}
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.MirrorX = false
	return cfg
}

func newTestEngine(t *testing.T, cfg Config, scene Scene) (*Engine, *timeutil.MockClock) {
	t.Helper()
	clock := timeutil.NewMockClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	e, err := New(cfg, scene, clock, nil)
	require.NoError(t, err)
	return e, clock
}

// step processes one tick and advances the clock by d afterwards.
func step(e *Engine, clock *timeutil.MockClock, d time.Duration, hands ...detector.HandLandmarks) Result {
	res := e.Process(hands)
	clock.Advance(d)
	return res
}

func commandsOf[T Command](cmds []Command) []T {
	var out []T
	for _, c := range cmds {
		if v, ok := c.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinDistance = cfg.MaxDistance

	_, err := New(cfg, newFakeScene(), nil, nil)
	assert.Error(t, err)

	_, err = New(DefaultConfig(), nil, nil, nil)
	assert.Error(t, err)
}

func TestEngine_NoHands(t *testing.T) {
	e, clock := newTestEngine(t, testConfig(), newFakeScene())

	res := step(e, clock, tick)
	assert.Empty(t, res.Commands)
	assert.Equal(t, StateInactive, res.Status.State)
}

func TestEngine_InvalidHandIsAbsent(t *testing.T) {
	e, clock := newTestEngine(t, testConfig(), newFakeScene())

	h := detector.OpenPalmLandmarks()
	h.Points[detector.Wrist].X = math.NaN()

	res := step(e, clock, tick, h)
	assert.Equal(t, StateInactive, res.Status.State)
	assert.Equal(t, 0, e.smoother.Len())
}

func TestEngine_OneHandStatus(t *testing.T) {
	e, clock := newTestEngine(t, testConfig(), newFakeScene())

	res := step(e, clock, tick, detector.WithHandedness(detector.OpenPalmLandmarks(), detector.HandLeft))
	assert.Equal(t, "Active (Left)", res.Status.State)
	assert.Equal(t, "Hand detected", res.Status.Action)
	assert.Equal(t, "0%", res.Status.Confidence)
}

func TestEngine_HandCountChangeResetsState(t *testing.T) {
	e, clock := newTestEngine(t, testConfig(), newFakeScene(pinchNode))

	step(e, clock, tick, detector.PinchLandmarks())
	step(e, clock, tick, detector.PinchLandmarks())
	_, dragging := e.Dragging()
	require.True(t, dragging)

	res := step(e, clock, tick)

	require.Len(t, res.Commands, 3)
	assert.Equal(t, UnpinNode{Node: 1}, res.Commands[0])
	assert.IsType(t, SetVelocity{}, res.Commands[1])
	assert.Equal(t, Reheat{}, res.Commands[2])
	assert.Equal(t, StateInactive, res.Status.State)

	_, dragging = e.Dragging()
	assert.False(t, dragging)
	assert.Equal(t, 0, e.smoother.Len())
	assert.Equal(t, 0, e.history.Len())
}

func TestEngine_TwoHandsSuppressOneHandState(t *testing.T) {
	e, clock := newTestEngine(t, testConfig(), newFakeScene(pointNode))

	step(e, clock, tick, detector.PointingLandmarks())
	require.True(t, e.dwell.targeting)

	step(e, clock, tick, detector.OpenPalmLandmarks(), detector.Shift(detector.OpenPalmLandmarks(), -0.3, 0))
	assert.False(t, e.dwell.targeting)
	assert.Equal(t, 0, e.smoother.Len())
}

func TestEngine_Reset(t *testing.T) {
	e, clock := newTestEngine(t, testConfig(), newFakeScene(pinchNode))

	step(e, clock, tick, detector.PinchLandmarks())
	step(e, clock, tick, detector.PinchLandmarks())

	cmds := e.Reset()
	assert.Len(t, cmds, 3)
	assert.Empty(t, e.Reset())
}

func TestEngine_MirrorX(t *testing.T) {
	cfg := DefaultConfig()
	mirrored := Node{ID: 7, Position: r3.Vec{X: -110, Y: -5}} // screen (390, 505)
	e, clock := newTestEngine(t, cfg, newFakeScene(mirrored))

	step(e, clock, tick, detector.PinchLandmarks())
	res := step(e, clock, tick, detector.PinchLandmarks())

	pins := commandsOf[PinNode](res.Commands)
	require.Len(t, pins, 1)
	assert.Equal(t, NodeID(7), pins[0].Node)
}
