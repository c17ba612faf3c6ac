package capture

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/handgraph/internal/detector"
)

func TestMockDetector(t *testing.T) {
	var _ Detector = (*MockDetector)(nil)

	t.Run("no hands by default", func(t *testing.T) {
		hands, err := NewMockDetector().Detect(nil)
		require.NoError(t, err)
		assert.Nil(t, hands)
	})

	t.Run("scripted hands", func(t *testing.T) {
		m := NewMockDetector()
		m.SetHands([]detector.HandLandmarks{detector.FistLandmarks(), detector.OpenPalmLandmarks()})

		hands, err := m.Detect(nil)
		require.NoError(t, err)
		assert.Len(t, hands, 2)
		assert.Equal(t, 1, m.Calls())
	})

	t.Run("error until cleared", func(t *testing.T) {
		m := NewMockDetector()
		m.SetHands([]detector.HandLandmarks{detector.FistLandmarks()})
		boom := errors.New("tracker died")
		m.SetError(boom)

		hands, err := m.Detect(nil)
		assert.ErrorIs(t, err, boom)
		assert.Nil(t, hands)

		m.SetError(nil)
		hands, err = m.Detect(nil)
		require.NoError(t, err)
		assert.Len(t, hands, 1)
	})
}
