package capture

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockCamera plays back a fixed frame sequence. It stands in for a webcam in
// tests and when the pipeline runs without hardware.
type MockCamera struct {
	mu      sync.Mutex
	frames  []*gocv.Mat
	next    int
	loop    bool
	fps     int
	open    bool
	reads   int
	openErr error
}

// NewMockCamera returns a camera that yields frames in order, wrapping
// around when loop is set.
func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	return &MockCamera{frames: frames, loop: loop, fps: DefaultFPS}
}

// FailOpen makes the next Open calls return err.
func (c *MockCamera) FailOpen(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.openErr = err
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.openErr != nil {
		return c.openErr
	}
	c.open = true
	c.next = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	return nil
}

// ReadFrame returns a clone of the next frame.
func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return nil, ErrCameraNotOpen
	}
	if c.next >= len(c.frames) {
		if !c.loop || len(c.frames) == 0 {
			return nil, ErrNoFrame
		}
		c.next = 0
	}

	frame := c.frames[c.next].Clone()
	c.next++
	c.reads++
	return &frame, nil
}

func (c *MockCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fps = fps
}

// FPS returns the last rate requested through SetFPS.
func (c *MockCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

// Reads reports how many frames were handed out.
func (c *MockCamera) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}
