package app

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/ayusman/handgraph/internal/capture"
	"github.com/ayusman/handgraph/internal/detector"
	"github.com/ayusman/handgraph/internal/store"
)

// flickerCamera alternates black and white frames so every frame after the
// first counts as motion.
func flickerCamera(t *testing.T) *capture.MockCamera {
	t.Helper()
	black := gocv.NewMatWithSize(capture.DefaultHeight, capture.DefaultWidth, gocv.MatTypeCV8UC3)
	white := gocv.NewMatWithSize(capture.DefaultHeight, capture.DefaultWidth, gocv.MatTypeCV8UC3)
	white.SetTo(gocv.NewScalar(255, 255, 255, 0))
	t.Cleanup(func() {
		black.Close()
		white.Close()
	})

	cam := capture.NewMockCamera([]*gocv.Mat{&black, &white}, true)
	require.NoError(t, cam.Open())
	return cam
}

func (f *fixture) grabWithSampler(t *testing.T, s *sampler, det *capture.MockDetector) {
	t.Helper()
	det.SetHands([]detector.HandLandmarks{pinchAtCenter()})
	for i := 0; i < 6; i++ {
		f.clock.Advance(tick)
		f.app.sample(s)
	}
	_, dragging := f.app.engine.Dragging()
	require.True(t, dragging, "pinch over the central node should grab it")
	require.True(t, f.graph.Snapshot().Nodes[0].Pinned)
}

func TestSample_DetectionStartsWithMotion(t *testing.T) {
	f := newFixture(t, nil)
	det := capture.NewMockDetector()
	s := f.app.newSampler(flickerCamera(t), det)

	f.app.sample(s)
	assert.Equal(t, 0, det.Calls(), "first frame only primes the motion baseline")

	changed := f.app.sample(s)
	assert.True(t, changed)
	assert.True(t, s.gate.Active())
	assert.Equal(t, 1, det.Calls())
}

func TestSample_DetectorFailureReleasesNode(t *testing.T) {
	f := newFixture(t, nil)
	det := capture.NewMockDetector()
	s := f.app.newSampler(flickerCamera(t), det)
	f.grabWithSampler(t, s, det)

	det.SetError(errors.New("tracker exited"))
	f.clock.Advance(tick)
	f.app.sample(s)

	_, dragging := f.app.engine.Dragging()
	assert.False(t, dragging)
	assert.False(t, f.graph.Snapshot().Nodes[0].Pinned)
	assert.Equal(t, "No hands detected", f.app.Status().Action)

	counts, err := f.store.Events().CountByKind()
	require.NoError(t, err)
	assert.Equal(t, 1, counts[store.EventRelease])
}

func TestSample_CameraFailureReleasesNode(t *testing.T) {
	f := newFixture(t, nil)
	det := capture.NewMockDetector()
	cam := flickerCamera(t)
	s := f.app.newSampler(cam, det)
	f.grabWithSampler(t, s, det)

	require.NoError(t, cam.Close())
	f.clock.Advance(tick)
	f.app.sample(s)

	_, dragging := f.app.engine.Dragging()
	assert.False(t, dragging)
	assert.False(t, f.graph.Snapshot().Nodes[0].Pinned)
}

func TestSourceLost_WhileDisabled(t *testing.T) {
	f := newFixture(t, nil)
	f.app.SetEnabled(false)

	res := f.app.SourceLost()
	assert.Empty(t, res.Commands)
	assert.Equal(t, "Capture paused", res.Status.Action)
}

func TestApp_NoHooksStartAfterStop(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.app.Start())
	f.app.Stop()

	_, ok := f.app.hookStarted()
	assert.False(t, ok, "a stopped app starts no hooks")

	require.NoError(t, f.app.Start())
	defer f.app.Stop()

	ctx, ok := f.app.hookStarted()
	require.True(t, ok)
	assert.NoError(t, ctx.Err())
	f.app.hooks.Done()
}

func TestSetEnabled_ResumeDropsMotionBaseline(t *testing.T) {
	f := newFixture(t, nil)
	det := capture.NewMockDetector()
	s := f.app.newSampler(flickerCamera(t), det)

	f.app.sample(s)
	f.app.SetEnabled(false)
	f.app.SetEnabled(true)

	// The white frame would read as motion against the pre-pause black one.
	f.app.sample(s)
	assert.Equal(t, 0, det.Calls())
	assert.False(t, s.gate.Active())
}
