package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

const (
	// blurKernel smooths sensor noise before differencing.
	blurKernel = 21
	// pixelDelta is the per-pixel intensity change counted as motion.
	pixelDelta = 25
)

// MotionDetector keeps a blurred grayscale baseline and reports the share of
// pixels that moved away from it. The pipeline uses it to leave the landmark
// tracker idle while nobody is in front of the camera.
type MotionDetector struct {
	mu        sync.Mutex
	threshold float64 // percent of changed pixels
	prev      gocv.Mat
	primed    bool
}

func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{threshold: threshold, prev: gocv.NewMat()}
}

// Detect reports whether frame crossed the threshold and the changed share
// (0-100). A frame that arrives with no baseline only primes one.
func (m *MotionDetector) Detect(frame *gocv.Mat) (moved bool, changed float64) {
	if frame == nil || frame.Empty() {
		return false, 0
	}

	cur := smoothGray(frame)
	defer cur.Close()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.primed {
		changed = changedShare(cur, m.prev)
	}
	cur.CopyTo(&m.prev)
	m.primed = true

	return changed > m.threshold, changed
}

// Reset drops the baseline. Call it after a gap in sampling so a stale
// frame does not read as motion.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.prev.Empty() {
		m.prev.Close()
		m.prev = gocv.NewMat()
	}
	m.primed = false
}

// Close releases the baseline Mat. The detector stays usable.
func (m *MotionDetector) Close() { m.Reset() }

func smoothGray(frame *gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	out := gocv.NewMat()
	gocv.GaussianBlur(gray, &out, image.Pt(blurKernel, blurKernel), 0, 0, gocv.BorderDefault)
	return out
}

// changedShare is the percentage of pixels whose intensity moved by more
// than pixelDelta between a and b.
func changedShare(a, b gocv.Mat) float64 {
	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(a, b, &diff)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(diff, &mask, pixelDelta, 255, gocv.ThresholdBinary)

	total := mask.Rows() * mask.Cols()
	if total == 0 {
		return 0
	}
	return float64(gocv.CountNonZero(mask)) / float64(total) * 100
}
