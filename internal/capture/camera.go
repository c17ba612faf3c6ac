// Package capture reads webcam frames through GoCV and gates the landmark
// detector on visible motion.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Capture defaults. Frames are requested at 640x480; the detector does not
// benefit from anything larger.
const (
	DefaultFPS    = 5
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrCameraNotOpen is returned when reading from a camera before Open.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrCameraUnavailable is returned when the device cannot be opened.
	ErrCameraUnavailable = errors.New("camera unavailable")
	// ErrNoFrame is returned when the device produced nothing on a read.
	ErrNoFrame = errors.New("no frame available")
)

// Camera is a frame source. ReadFrame hands ownership of the Mat to the
// caller.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	// SetFPS requests a capture rate; non-positive values are ignored.
	SetFPS(fps int)
}

type deviceCamera struct {
	mu       sync.Mutex
	deviceID int
	capture  *gocv.VideoCapture
	fps      int
}

// NewCamera returns a Camera for the given device index. Nothing is opened
// until Open is called.
func NewCamera(deviceID int) Camera {
	return &deviceCamera{deviceID: deviceID, fps: DefaultFPS}
}

// Open opens the device. Failures wrap ErrCameraUnavailable so callers can
// fall back to another landmark source.
func (c *deviceCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture != nil {
		return nil
	}

	vc, err := gocv.OpenVideoCapture(c.deviceID)
	if err != nil {
		return fmt.Errorf("%w: device %d: %v", ErrCameraUnavailable, c.deviceID, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return fmt.Errorf("%w: device %d did not open", ErrCameraUnavailable, c.deviceID)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, DefaultWidth)
	vc.Set(gocv.VideoCaptureFrameHeight, DefaultHeight)
	vc.Set(gocv.VideoCaptureFPS, float64(c.fps))

	c.capture = vc
	return nil
}

func (c *deviceCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil
	}
	err := c.capture.Close()
	c.capture = nil
	return err
}

func (c *deviceCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, ErrNoFrame
	}
	return &mat, nil
}

func (c *deviceCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps
	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}
