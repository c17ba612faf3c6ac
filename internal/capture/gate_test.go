package capture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ayusman/handgraph/internal/timeutil"
)

func TestRateGate_RaisesOnActivity(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	g := NewRateGate(5, 30, clock)

	assert.False(t, g.Active())
	assert.Equal(t, 200*time.Millisecond, g.Interval())

	fps, changed := g.Observe(false)
	assert.Equal(t, 5, fps)
	assert.False(t, changed)

	fps, changed = g.Observe(true)
	assert.Equal(t, 30, fps)
	assert.True(t, changed)

	fps, changed = g.Observe(true)
	assert.Equal(t, 30, fps)
	assert.False(t, changed)
}

func TestRateGate_HoldsThenDrops(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	g := NewRateGate(5, 30, clock)

	g.Observe(true)

	clock.Advance(DefaultActiveHold - time.Millisecond)
	fps, changed := g.Observe(false)
	assert.Equal(t, 30, fps)
	assert.False(t, changed)

	clock.Advance(time.Millisecond)
	fps, changed = g.Observe(false)
	assert.Equal(t, 5, fps)
	assert.True(t, changed)
}

func TestRateGate_ActivityExtendsHold(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	g := NewRateGate(5, 30, clock)

	g.Observe(true)
	clock.Advance(time.Second)
	g.Observe(true)
	clock.Advance(1500 * time.Millisecond)

	fps, _ := g.Observe(false)
	assert.Equal(t, 30, fps)
}

func TestNewRateGate_NormalizesRates(t *testing.T) {
	g := NewRateGate(0, 2, nil)
	assert.Equal(t, DefaultFPS, g.IdleFPS)
	assert.Equal(t, DefaultFPS, g.ActiveFPS)
}
