// Package app wires the landmark sources, the interaction engine, the
// reference scene, the journal and the activation hooks together.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/handgraph/internal/capture"
	"github.com/ayusman/handgraph/internal/config"
	"github.com/ayusman/handgraph/internal/interact"
	"github.com/ayusman/handgraph/internal/plugin"
	"github.com/ayusman/handgraph/internal/scene"
	"github.com/ayusman/handgraph/internal/store"
	"github.com/ayusman/handgraph/internal/timeutil"
)

// ErrSensorUnavailable is returned by Start when the camera or the hand
// detector cannot be used. The scene and hooks keep running without it.
var ErrSensorUnavailable = errors.New("sensor unavailable")

// Scene ticks and journal retention.
const (
	PhysicsFPS       = 60
	JournalRetention = 30 * 24 * time.Hour
)

// StatusSink receives the three status channels whenever they change.
type StatusSink interface {
	UpdateStatus(interact.Status)
}

// StatusFunc adapts a function to StatusSink.
type StatusFunc func(interact.Status)

// UpdateStatus calls f(s).
func (f StatusFunc) UpdateStatus(s interact.Status) { f(s) }

// Config holds the collaborators of an App. Graph is required; Store and
// Plugins are optional.
type Config struct {
	Gesture  interact.Config
	Sensor   config.SensorConfig
	Graph    *scene.Graph
	Store    *store.Store
	Plugins  *plugin.Manager
	Executor *plugin.Executor
	Clock    timeutil.Clock
	Log      *zap.Logger
}

// App serializes every landmark tick through one engine.
type App struct {
	cfg    Config
	log    *zap.Logger
	graph  *scene.Graph
	engine *interact.Engine

	// tick serializes Process, Apply and journaling.
	tick   sync.Mutex
	status interact.Status

	mu       sync.RWMutex
	enabled  bool
	sinks    []StatusSink
	camera   capture.Camera
	motion   *capture.MotionDetector
	detector capture.Detector
	stopCh   chan struct{}
	loops    sync.WaitGroup

	// hookMu orders hooks.Add against the cancel in Stop.
	hookMu     sync.Mutex
	hookCtx    context.Context
	hookCancel context.CancelFunc
	hooks      sync.WaitGroup
}

// New builds an App. It tries to set up the MediaPipe detector; when that
// fails the camera source reports ErrSensorUnavailable on Start.
func New(cfg Config) (*App, error) {
	if cfg.Graph == nil {
		return nil, errors.New("app: graph is required")
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.Clock == nil {
		cfg.Clock = timeutil.RealClock{}
	}
	if cfg.Plugins != nil && cfg.Executor == nil {
		cfg.Executor = plugin.NewExecutor(plugin.DefaultTimeout)
	}
	if cfg.Sensor.Source == "" {
		cfg.Sensor = config.Default().Sensor
	}

	engine, err := interact.New(cfg.Gesture, cfg.Graph, cfg.Clock, cfg.Log.Named("engine"))
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:     cfg,
		log:     cfg.Log,
		graph:   cfg.Graph,
		engine:  engine,
		enabled: true,
		status:  idleStatus("No hands detected"),
		camera:  capture.NewCamera(cfg.Sensor.CameraID),
		motion:  capture.NewMotionDetector(cfg.Sensor.MotionThreshold),
	}
	a.hookCtx, a.hookCancel = context.WithCancel(context.Background())

	if cfg.Store != nil {
		a.enabled = cfg.Store.Settings().Bool(store.SettingCaptureEnabled, true)
	}

	if cfg.Sensor.Source == config.SourceCamera {
		mp, err := capture.NewMediaPipeDetector(capture.DetectorConfig{
			MaxHands:        cfg.Sensor.MaxHands,
			MinConfidence:   cfg.Sensor.MinConfidence,
			MinTrackingConf: cfg.Sensor.MinConfidence,
		})
		if err != nil {
			a.log.Warn("hand detector unavailable", zap.Error(err))
		} else {
			a.detector = mp
		}
	}
	return a, nil
}

func idleStatus(action string) interact.Status {
	return interact.Status{State: interact.StateInactive, Action: action, Confidence: "-"}
}

// AddSink registers a status sink and sends it the current status.
func (a *App) AddSink(s StatusSink) {
	a.mu.Lock()
	a.sinks = append(a.sinks, s)
	a.mu.Unlock()

	a.tick.Lock()
	status := a.status
	a.tick.Unlock()
	s.UpdateStatus(status)
}

// SetCamera replaces the frame source. Call before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// SetDetector replaces the hand detector. Call before Start.
func (a *App) SetDetector(d capture.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the hand detector, which may be nil.
func (a *App) Detector() capture.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Enabled reports whether landmark ticks are processed.
func (a *App) Enabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetEnabled pauses or resumes gesture capture. Pausing releases any held
// node; resuming drops the motion baseline captured before the pause. The
// choice is remembered in the store.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	changed := a.enabled != enabled
	a.enabled = enabled
	a.mu.Unlock()

	if a.cfg.Store != nil {
		if err := a.cfg.Store.Settings().SetBool(store.SettingCaptureEnabled, enabled); err != nil {
			a.log.Warn("persist capture setting", zap.Error(err))
		}
	}
	if !changed {
		return
	}

	a.tick.Lock()
	defer a.tick.Unlock()

	if enabled {
		a.motion.Reset()
		a.publish(idleStatus("No hands detected"))
		return
	}
	a.apply(a.engine.Reset())
	a.publish(idleStatus("Capture paused"))
}

// Status returns the last published status.
func (a *App) Status() interact.Status {
	a.tick.Lock()
	defer a.tick.Unlock()
	return a.status
}

// Graph returns the scene.
func (a *App) Graph() *scene.Graph {
	return a.graph
}

// Store returns the store, which may be nil.
func (a *App) Store() *store.Store {
	return a.cfg.Store
}

// Plugins returns the plugin manager, which may be nil.
func (a *App) Plugins() *plugin.Manager {
	return a.cfg.Plugins
}

// Source returns the configured landmark source.
func (a *App) Source() string {
	return a.cfg.Sensor.Source
}

// Start runs the scene physics and, for the camera source, the capture
// pipeline. A sensor failure is returned wrapped in ErrSensorUnavailable
// after the physics loop has started; Stop must still be called.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}
	a.stopCh = make(chan struct{})

	a.hookMu.Lock()
	if a.hookCtx.Err() != nil {
		a.hookCtx, a.hookCancel = context.WithCancel(context.Background())
	}
	a.hookMu.Unlock()

	if a.cfg.Store != nil {
		cutoff := a.cfg.Clock.Now().Add(-JournalRetention)
		if n, err := a.cfg.Store.Events().Prune(cutoff); err != nil {
			a.log.Warn("prune journal", zap.Error(err))
		} else if n > 0 {
			a.log.Info("pruned journal", zap.Int64("events", n))
		}
	}

	a.loops.Add(1)
	go a.runPhysics(a.stopCh)

	if a.cfg.Sensor.Source != config.SourceCamera {
		a.log.Info("waiting for landmarks over websocket")
		return nil
	}
	if a.detector == nil {
		return fmt.Errorf("%w: no hand detector", ErrSensorUnavailable)
	}
	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("%w: %w", ErrSensorUnavailable, err)
	}

	a.loops.Add(1)
	go a.runPipeline(a.stopCh, a.camera, a.detector)

	a.log.Info("capture pipeline started", zap.Int("camera", a.cfg.Sensor.CameraID))
	return nil
}

// Stop halts the loops, waits for running hooks and releases the sensor.
func (a *App) Stop() {
	a.mu.Lock()
	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}
	a.mu.Unlock()

	a.loops.Wait()
	a.hookMu.Lock()
	a.hookCancel()
	a.hookMu.Unlock()
	a.hooks.Wait()

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.camera.Close(); err != nil {
		a.log.Warn("close camera", zap.Error(err))
	}
	a.motion.Close()
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			a.log.Warn("close detector", zap.Error(err))
		}
	}
	a.log.Info("app stopped")
}

// WaitHooks blocks until every hook started so far has finished.
func (a *App) WaitHooks() {
	a.hooks.Wait()
}
