package app

import (
	"go.uber.org/zap"

	"github.com/ayusman/handgraph/internal/detector"
	"github.com/ayusman/handgraph/internal/interact"
)

// HandleHands runs one engine tick: commands go to the scene, discrete
// interactions to the journal and hooks, and the status to the sinks.
// Ticks from every source are serialized.
func (a *App) HandleHands(hands []detector.HandLandmarks) interact.Result {
	a.tick.Lock()
	defer a.tick.Unlock()

	if !a.Enabled() {
		return interact.Result{Status: a.status}
	}

	res := a.engine.Process(hands)
	a.apply(res.Commands)
	a.publish(res.Status)
	return res
}

// SourceLost clears all gesture state after the landmark source failed or
// disconnected. A held node is released with its toss, as when the hands
// leave the frame.
func (a *App) SourceLost() interact.Result {
	a.tick.Lock()
	defer a.tick.Unlock()

	if !a.Enabled() {
		return interact.Result{Status: a.status}
	}

	cmds := a.engine.Reset()
	a.apply(cmds)
	a.publish(idleStatus("No hands detected"))
	return interact.Result{Commands: cmds, Status: a.status}
}

// HandleRaw converts tracker output and runs a tick. Malformed hands are
// dropped for the tick.
func (a *App) HandleRaw(raw []detector.RawHand) interact.Result {
	hands, dropped := detector.ConvertHands(raw)
	if dropped > 0 {
		a.log.Debug("dropped malformed hands", zap.Int("count", dropped))
	}
	return a.HandleHands(hands)
}

// apply must be called with tick held.
func (a *App) apply(cmds []interact.Command) {
	if len(cmds) == 0 {
		return
	}
	if err := a.graph.Apply(cmds); err != nil {
		a.log.Warn("apply commands", zap.Error(err))
	}
	a.journal(cmds)
}

// publish must be called with tick held.
func (a *App) publish(s interact.Status) {
	if s == a.status {
		return
	}
	a.status = s

	a.mu.RLock()
	sinks := a.sinks
	a.mu.RUnlock()

	for _, sink := range sinks {
		sink.UpdateStatus(s)
	}
}
