package capture

import (
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/handgraph/internal/detector"
)

// Detector finds hand landmarks in camera frames.
type Detector interface {
	// Detect returns the hands in frame, or an empty slice.
	Detect(frame *gocv.Mat) ([]detector.HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// DetectorConfig tunes the hand tracker.
type DetectorConfig struct {
	// MaxHands is the maximum number of hands to report (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// ScriptPath and Python override the lookup of the tracker service and
	// its interpreter.
	ScriptPath string
	Python     string

	// IdleTimeout stops the tracker service after this long without frames.
	IdleTimeout time.Duration
}

// DefaultDetectorConfig returns the tracker defaults.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		MaxHands:        2,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
		IdleTimeout:     30 * time.Second,
	}
}
