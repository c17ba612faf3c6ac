package interact

import (
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/handgraph/internal/gesture"
)

// Config holds the engine tuning. All values are product tuning constants.
type Config struct {
	gesture.Classifier `yaml:",inline"`

	SmoothingWindow int `yaml:"smoothing_window"`
	PinchWindow     int `yaml:"pinch_window"`
	PinchVotes      int `yaml:"pinch_votes"`

	// Drag
	AcquireTolerancePx float64       `yaml:"acquire_tolerance_px"`
	NodeRadius         float64       `yaml:"node_radius"`
	DragSensitivity    float64       `yaml:"drag_sensitivity"`
	ReleaseImpulse     float64       `yaml:"release_impulse"`
	ReleaseGrace       time.Duration `yaml:"release_grace"`

	// Dwell
	DwellDuration time.Duration `yaml:"dwell_duration"`
	DwellRadiusPx float64       `yaml:"dwell_radius_px"`

	// Two hands
	RotateEnterThreshold float64 `yaml:"rotate_enter_threshold"`
	RotateExitThreshold  float64 `yaml:"rotate_exit_threshold"`
	SmoothingAlpha       float64 `yaml:"smoothing_alpha"`
	RotateSensitivity    float64 `yaml:"rotate_sensitivity"`
	ZoomSensitivity      float64 `yaml:"zoom_sensitivity"`
	ZoomDeadband         float64 `yaml:"zoom_deadband"`
	MinDistance          float64 `yaml:"min_distance"`
	MaxDistance          float64 `yaml:"max_distance"`

	// MirrorX flips image x before mapping to the screen, for selfie cameras.
	MirrorX bool `yaml:"mirror_x"`
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		Classifier:           gesture.DefaultClassifier(),
		SmoothingWindow:      gesture.DefaultSmoothingWindow,
		PinchWindow:          gesture.DefaultPinchWindow,
		PinchVotes:           gesture.DefaultPinchVotes,
		AcquireTolerancePx:   120,
		NodeRadius:           6,
		DragSensitivity:      1.0,
		ReleaseImpulse:       2.5,
		ReleaseGrace:         500 * time.Millisecond,
		DwellDuration:        1500 * time.Millisecond,
		DwellRadiusPx:        100,
		RotateEnterThreshold: 0.15,
		RotateExitThreshold:  0.12,
		SmoothingAlpha:       0.3,
		RotateSensitivity:    4.0,
		ZoomSensitivity:      1000,
		ZoomDeadband:         0.002,
		MinDistance:          50,
		MaxDistance:          2000,
		MirrorX:              true,
	}
}

// Validate checks the tuning for inconsistent values.
func (c Config) Validate() error {
	var errs []error

	if c.PinchThreshold <= 0 {
		errs = append(errs, fmt.Errorf("pinch_threshold must be positive, got %v", c.PinchThreshold))
	}
	if c.PinchCeiling < c.PinchThreshold {
		errs = append(errs, fmt.Errorf("pinch_confidence_ceiling (%v) must not be below pinch_threshold (%v)", c.PinchCeiling, c.PinchThreshold))
	}
	if c.SmoothingWindow < 1 {
		errs = append(errs, fmt.Errorf("smoothing_window must be at least 1, got %d", c.SmoothingWindow))
	}
	if c.PinchVotes < 1 || c.PinchVotes > c.PinchWindow {
		errs = append(errs, fmt.Errorf("pinch_votes must be in [1, pinch_window=%d], got %d", c.PinchWindow, c.PinchVotes))
	}
	if c.ReleaseGrace < 0 {
		errs = append(errs, errors.New("release_grace must not be negative"))
	}
	if c.DwellDuration <= 0 {
		errs = append(errs, errors.New("dwell_duration must be positive"))
	}
	if c.RotateExitThreshold > c.RotateEnterThreshold {
		errs = append(errs, fmt.Errorf("rotate_exit_threshold (%v) must not exceed rotate_enter_threshold (%v)", c.RotateExitThreshold, c.RotateEnterThreshold))
	}
	if c.SmoothingAlpha <= 0 || c.SmoothingAlpha > 1 {
		errs = append(errs, fmt.Errorf("smoothing_alpha must be in (0, 1], got %v", c.SmoothingAlpha))
	}
	if c.ZoomDeadband < 0 {
		errs = append(errs, errors.New("zoom_deadband must not be negative"))
	}
	if c.MinDistance <= 0 || c.MinDistance >= c.MaxDistance {
		errs = append(errs, fmt.Errorf("min_distance (%v) must be positive and below max_distance (%v)", c.MinDistance, c.MaxDistance))
	}

	return errors.Join(errs...)
}
