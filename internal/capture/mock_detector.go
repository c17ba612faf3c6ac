package capture

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/handgraph/internal/detector"
)

// MockDetector returns scripted hands or an error from Detect.
type MockDetector struct {
	mu    sync.Mutex
	hands []detector.HandLandmarks
	err   error
	calls int
}

func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands returned by Detect.
func (m *MockDetector) SetHands(hands []detector.HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError makes Detect fail with err until cleared with nil.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockDetector) Detect(frame *gocv.Mat) ([]detector.HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

func (m *MockDetector) Close() error {
	return nil
}
