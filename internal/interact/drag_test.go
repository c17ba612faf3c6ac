package interact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/handgraph/internal/detector"
)

func TestEngine_PinchAcquiresNode(t *testing.T) {
	e, clock := newTestEngine(t, testConfig(), newFakeScene(pinchNode, farNode))

	res := step(e, clock, tick, detector.PinchLandmarks())
	assert.Empty(t, res.Commands, "a single pinch sample must not acquire")

	res = step(e, clock, tick, detector.PinchLandmarks())
	require.Len(t, res.Commands, 1)
	assert.Equal(t, PinNode{Node: 1, Position: pinchNode.Position, Grab: true}, res.Commands[0])
	assert.Equal(t, "Dragging node 1", res.Status.Action)
	assert.Equal(t, "100%", res.Status.Confidence)
}

func TestEngine_PinchWithoutTarget(t *testing.T) {
	e, clock := newTestEngine(t, testConfig(), newFakeScene(farNode))

	step(e, clock, tick, detector.PinchLandmarks())
	res := step(e, clock, tick, detector.PinchLandmarks())

	assert.Empty(t, res.Commands)
	assert.Equal(t, "Pinching", res.Status.Action)
	assert.Equal(t, dragEmpty, e.drag.phase)
}

func TestEngine_PinchSkipsUnprojectableNodes(t *testing.T) {
	behind := Node{ID: 9, Position: r3.Vec{X: 110, Y: -5, Z: 900}}
	e, clock := newTestEngine(t, testConfig(), newFakeScene(behind))

	step(e, clock, tick, detector.PinchLandmarks())
	res := step(e, clock, tick, detector.PinchLandmarks())

	assert.Empty(t, res.Commands)
}

func TestEngine_DragMovesAlongCameraBasis(t *testing.T) {
	e, clock := newTestEngine(t, testConfig(), newFakeScene(pinchNode))

	step(e, clock, tick, detector.PinchLandmarks())
	step(e, clock, tick, detector.PinchLandmarks())

	// Smoothing over three frames turns a 0.03 jump into a 0.01 step.
	res := step(e, clock, tick, detector.Shift(detector.PinchLandmarks(), 0.03, 0))
	pins := commandsOf[PinNode](res.Commands)
	require.Len(t, pins, 1)

	dist := r3.Norm(r3.Sub(r3.Vec{Z: 500}, pinchNode.Position))
	assert.False(t, pins[0].Grab)
	assert.InDelta(t, pinchNode.Position.X+0.01*dist, pins[0].Position.X, 1e-6)
	assert.InDelta(t, pinchNode.Position.Y, pins[0].Position.Y, 1e-6)
	assert.InDelta(t, 0, pins[0].Position.Z, 1e-12)

	// Image y grows downward, world up does not.
	res = step(e, clock, tick, detector.Shift(detector.PinchLandmarks(), 0.03, 0.03))
	pins = commandsOf[PinNode](res.Commands)
	require.Len(t, pins, 1)
	assert.Less(t, pins[0].Position.Y, pinchNode.Position.Y)
}

func TestEngine_ReleaseImpulse(t *testing.T) {
	e, clock := newTestEngine(t, testConfig(), newFakeScene(pinchNode))

	step(e, clock, tick, detector.PinchLandmarks())
	step(e, clock, tick, detector.PinchLandmarks())
	step(e, clock, tick, detector.Shift(detector.PinchLandmarks(), 0.02, 0.01))

	var released Result
	var want r3.Vec
	for i := 0; i < 3; i++ {
		want = r3.Scale(2.5, e.drag.lastMove)
		released = step(e, clock, tick, detector.OpenPalmLandmarks())
		if len(commandsOf[UnpinNode](released.Commands)) > 0 {
			break
		}
	}

	require.Len(t, released.Commands, 3)
	assert.Equal(t, UnpinNode{Node: 1}, released.Commands[0])
	assert.Equal(t, SetVelocity{Node: 1, Velocity: want}, released.Commands[1])
	assert.Equal(t, Reheat{}, released.Commands[2])
	assert.NotEqual(t, r3.Vec{}, want)

	_, dragging := e.Dragging()
	assert.False(t, dragging)
	assert.Equal(t, dragReleased, e.drag.phase)
}

func releaseAfterGrab(t *testing.T, feed func(detector.HandLandmarks) Result) {
	t.Helper()
	feed(detector.PinchLandmarks())
	feed(detector.PinchLandmarks())
	for i := 0; i < 3; i++ {
		res := feed(detector.OpenPalmLandmarks())
		if len(commandsOf[UnpinNode](res.Commands)) > 0 {
			return
		}
	}
	t.Fatal("node was never released")
}

func TestEngine_ReleaseGraceRegrabsSameNode(t *testing.T) {
	e, clock := newTestEngine(t, testConfig(), newFakeScene(pinchNode, farNode))
	releaseAfterGrab(t, func(h detector.HandLandmarks) Result { return step(e, clock, tick, h) })

	// Pinch again well away from any node, inside the grace window.
	away := detector.Shift(detector.PinchLandmarks(), -0.5, -0.4)
	var pins []PinNode
	for i := 0; i < 5 && len(pins) == 0; i++ {
		res := step(e, clock, tick, away)
		pins = commandsOf[PinNode](res.Commands)
	}

	require.Len(t, pins, 1)
	assert.Equal(t, NodeID(1), pins[0].Node)
	assert.True(t, pins[0].Grab)
}

func TestEngine_ReleaseGraceExpires(t *testing.T) {
	e, clock := newTestEngine(t, testConfig(), newFakeScene(pinchNode, farNode))
	releaseAfterGrab(t, func(h detector.HandLandmarks) Result { return step(e, clock, tick, h) })

	clock.Advance(e.cfg.ReleaseGrace)

	away := detector.Shift(detector.PinchLandmarks(), -0.5, -0.4)
	var res Result
	for i := 0; i < 4; i++ {
		res = step(e, clock, tick, away)
		assert.Empty(t, commandsOf[PinNode](res.Commands))
	}
	assert.Equal(t, "Pinching", res.Status.Action)
	assert.Equal(t, dragEmpty, e.drag.phase)
}

func TestEngine_SingleFrameDropoutKeepsDrag(t *testing.T) {
	e, clock := newTestEngine(t, testConfig(), newFakeScene(pinchNode))

	step(e, clock, tick, detector.PinchLandmarks())
	step(e, clock, tick, detector.PinchLandmarks())
	step(e, clock, tick, detector.PinchLandmarks())

	res := step(e, clock, tick, detector.OpenPalmLandmarks())
	assert.Empty(t, commandsOf[UnpinNode](res.Commands))
	_, dragging := e.Dragging()
	assert.True(t, dragging)
}
