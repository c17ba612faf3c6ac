package app

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/handgraph/internal/capture"
)

// sampler is the per-tick state of the capture pipeline.
type sampler struct {
	cam       capture.Camera
	det       capture.Detector
	gate      *capture.RateGate
	handsSeen bool
}

func (a *App) newSampler(cam capture.Camera, det capture.Detector) *sampler {
	s := &sampler{
		cam:  cam,
		det:  det,
		gate: capture.NewRateGate(a.cfg.Sensor.IdleFPS, a.cfg.Sensor.ActiveFPS, a.cfg.Clock),
	}
	cam.SetFPS(s.gate.FPS())
	return s
}

// runPipeline samples the camera at the idle rate until motion or a hand
// is seen, then at the active rate. Detection only runs while active.
func (a *App) runPipeline(stop <-chan struct{}, cam capture.Camera, det capture.Detector) {
	defer a.loops.Done()

	s := a.newSampler(cam, det)
	ticker := time.NewTicker(s.gate.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		if !a.Enabled() {
			continue
		}
		if a.sample(s) {
			ticker.Reset(s.gate.Interval())
		}
	}
}

// sample reads and processes one frame. It reports whether the capture
// rate changed. A failing camera or detector counts as lost input.
func (a *App) sample(s *sampler) bool {
	frame, err := s.cam.ReadFrame()
	if err != nil {
		if errors.Is(err, capture.ErrNoFrame) {
			return false
		}
		a.log.Warn("read frame", zap.Error(err))
		s.handsSeen = false
		a.SourceLost()
		return false
	}
	defer frame.Close()

	moved, _ := a.motion.Detect(frame)
	fps, changed := s.gate.Observe(moved || s.handsSeen)
	if changed {
		s.cam.SetFPS(fps)
		a.log.Debug("capture rate changed", zap.Int("fps", fps), zap.Bool("active", s.gate.Active()))
	}
	if !s.gate.Active() {
		return changed
	}

	hands, err := s.det.Detect(frame)
	if err != nil {
		a.log.Warn("detect hands", zap.Error(err))
		s.handsSeen = false
		a.SourceLost()
		return changed
	}

	s.handsSeen = len(hands) > 0
	a.HandleHands(hands)
	return changed
}

// runPhysics advances the scene simulation.
func (a *App) runPhysics(stop <-chan struct{}) {
	defer a.loops.Done()

	ticker := time.NewTicker(time.Second / PhysicsFPS)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			a.graph.Step()
		}
	}
}
