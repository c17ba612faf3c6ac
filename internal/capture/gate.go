package capture

import (
	"time"

	"github.com/ayusman/handgraph/internal/timeutil"
)

// DefaultActiveHold is how long the gate stays at the active rate after the
// last observed motion or hand.
const DefaultActiveHold = 2 * time.Second

// RateGate switches the sampling rate between an idle and an active FPS.
// Motion or a visible hand raises it; it drops back once neither has been
// seen for Hold.
type RateGate struct {
	IdleFPS   int
	ActiveFPS int
	Hold      time.Duration

	clock    timeutil.Clock
	active   bool
	lastSeen time.Time
}

// NewRateGate returns a gate that starts idle.
func NewRateGate(idleFPS, activeFPS int, clock timeutil.Clock) *RateGate {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	if idleFPS <= 0 {
		idleFPS = DefaultFPS
	}
	if activeFPS < idleFPS {
		activeFPS = idleFPS
	}
	return &RateGate{IdleFPS: idleFPS, ActiveFPS: activeFPS, Hold: DefaultActiveHold, clock: clock}
}

// Observe records one sample and returns the rate to use next and whether
// it changed.
func (g *RateGate) Observe(activity bool) (fps int, changed bool) {
	now := g.clock.Now()
	was := g.active

	if activity {
		g.lastSeen = now
		g.active = true
	} else if g.active && now.Sub(g.lastSeen) >= g.Hold {
		g.active = false
	}

	return g.FPS(), was != g.active
}

// Active reports whether the gate is at the active rate.
func (g *RateGate) Active() bool {
	return g.active
}

// FPS returns the current rate.
func (g *RateGate) FPS() int {
	if g.active {
		return g.ActiveFPS
	}
	return g.IdleFPS
}

// Interval returns the tick period for the current rate.
func (g *RateGate) Interval() time.Duration {
	return time.Second / time.Duration(g.FPS())
}
