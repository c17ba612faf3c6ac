// Package interact is the gesture-to-interaction engine. It turns per-frame
// hand landmarks into camera and node commands against a Scene.
package interact

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ayusman/handgraph/internal/detector"
	"github.com/ayusman/handgraph/internal/gesture"
	"github.com/ayusman/handgraph/internal/timeutil"
)

// handClass is the hand-count class of a tick.
type handClass int

const (
	noHands handClass = iota
	oneHand
	twoHands
)

func classify(n int) handClass {
	switch {
	case n <= 0:
		return noHands
	case n == 1:
		return oneHand
	default:
		return twoHands
	}
}

func (c handClass) String() string {
	switch c {
	case oneHand:
		return "one-hand"
	case twoHands:
		return "two-hands"
	default:
		return "no-hands"
	}
}

// Engine holds all gesture state. It is not safe for concurrent use;
// callers serialize ticks.
type Engine struct {
	cfg   Config
	scene Scene
	clock timeutil.Clock
	log   *zap.Logger

	class    handClass
	smoother *gesture.Smoother
	history  *gesture.PinchHistory
	drag     dragController
	dwell    dwellSelector
	rotate   rotateController
	zoom     zoomController
}

// New creates an Engine. A nil clock uses real time and a nil logger
// discards output.
func New(cfg Config, scene Scene, clock timeutil.Clock, log *zap.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid gesture config: %w", err)
	}
	if scene == nil {
		return nil, errors.New("scene is required")
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Engine{
		cfg:      cfg,
		scene:    scene,
		clock:    clock,
		log:      log,
		smoother: gesture.NewSmoother(cfg.SmoothingWindow),
		history:  gesture.NewPinchHistory(cfg.PinchWindow, cfg.PinchVotes),
	}, nil
}

// Config returns the engine tuning.
func (e *Engine) Config() Config {
	return e.cfg
}

// Process runs one tick. Invalid hands are treated as absent and at most
// two hands are considered.
func (e *Engine) Process(hands []detector.HandLandmarks) Result {
	valid := make([]*detector.HandLandmarks, 0, 2)
	for i := range hands {
		if len(valid) == 2 {
			break
		}
		if hands[i].Valid() {
			valid = append(valid, &hands[i])
		}
	}

	var cmds []Command
	class := classify(len(valid))
	if class != e.class {
		e.log.Debug("hand count changed",
			zap.Stringer("from", e.class),
			zap.Stringer("to", class))
		cmds = e.reset()
		e.class = class
	}

	var (
		more   []Command
		status Status
	)
	switch class {
	case oneHand:
		more, status = e.oneHand(valid[0])
	case twoHands:
		more, status = e.twoHands(valid[0], valid[1])
	default:
		status = Status{State: StateInactive, Action: "No hands detected", Confidence: "-"}
	}

	return Result{Commands: append(cmds, more...), Status: status}
}

// Reset clears all gesture state, releasing a held node immediately.
func (e *Engine) Reset() []Command {
	e.class = noHands
	return e.reset()
}

func (e *Engine) reset() []Command {
	var cmds []Command
	if node, ok := e.drag.holding(); ok {
		cmds = releaseCommands(node, e.drag.lastMove, e.cfg.ReleaseImpulse)
		e.log.Debug("node released on reset", zap.Int("node", int(node)))
	}

	e.smoother.Reset()
	e.history.Reset()
	e.drag.clear()
	e.dwell.reset()
	e.rotate.deactivate()
	e.zoom.deactivate()
	return cmds
}

// Dragging returns the node currently pinned by the engine.
func (e *Engine) Dragging() (NodeID, bool) {
	return e.drag.holding()
}

// oneHand handles a single smoothed hand: pinch drag takes precedence over
// dwell pointing.
func (e *Engine) oneHand(raw *detector.HandLandmarks) ([]Command, Status) {
	now := e.clock.Now()

	e.smoother.Push(*raw)
	hand, _ := e.smoother.Current()

	pinch := e.cfg.Pinch(&hand)
	e.history.Push(e.cfg.IsPinch(pinch))
	pinching := e.history.ShouldBePinching()

	cmds := e.updateDrag(pinching, pinch.Midpoint, now)

	status := Status{
		State:      StateActive(hand.Label()),
		Action:     "Hand detected",
		Confidence: percent(pinch.Confidence),
	}

	if node, ok := e.drag.holding(); ok {
		e.dwell.reset()
		status.Action = fmt.Sprintf("Dragging node %d", node)
		return cmds, status
	}
	if pinching {
		e.dwell.reset()
		status.Action = "Pinching"
		return cmds, status
	}

	point := gesture.Point(&hand)
	if !point.Pointing {
		e.dwell.reset()
		return cmds, status
	}

	sx, sy := e.toScreen(point.Position)
	node, found := nearestNode(e.scene, sx, sy, e.cfg.DwellRadiusPx)
	fired, progress := e.dwell.update(node, found, now, e.cfg.DwellDuration)

	switch {
	case fired:
		e.log.Debug("node activated", zap.Int("node", int(node)))
		cmds = append(cmds, Activate{Node: node})
		status.Action = fmt.Sprintf("Activated node %d", node)
		status.Confidence = percent(100)
	case found:
		status.Action = fmt.Sprintf("Pointing at node %d", node)
		status.Confidence = "Dwell " + percent(progress*100)
	default:
		status.Action = "Pointing"
		status.Confidence = "-"
	}
	return cmds, status
}

// toScreen maps a normalized image point to screen pixels.
func (e *Engine) toScreen(p detector.Point3D) (float64, float64) {
	w, h := e.scene.Viewport()
	x := p.X
	if e.cfg.MirrorX {
		x = 1 - x
	}
	return x * w, p.Y * h
}
