// Package config handles handgraph configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/ayusman/handgraph/internal/interact"
	"github.com/ayusman/handgraph/internal/logger"
)

// Sensor sources.
const (
	SourceCamera    = "camera"
	SourceWebSocket = "websocket"
)

// Config holds all settings.
type Config struct {
	Gesture interact.Config `yaml:"gesture"`
	Sensor  SensorConfig    `yaml:"sensor"`
	Scene   SceneConfig     `yaml:"scene"`
	Server  ServerConfig    `yaml:"server"`
	Store   StoreConfig     `yaml:"store"`
	Plugins PluginConfig    `yaml:"plugins"`
	Logging LoggingConfig   `yaml:"logging"`
	Tray    TrayConfig      `yaml:"tray"`
}

// SensorConfig selects where hand landmarks come from.
type SensorConfig struct {
	// Source is "camera" (local capture + MediaPipe) or "websocket"
	// (landmarks pushed to /api/frames).
	Source          string  `yaml:"source"`
	CameraID        int     `yaml:"camera_id"`
	MotionThreshold float64 `yaml:"motion_threshold"` // percent of changed pixels
	IdleFPS         int     `yaml:"idle_fps"`
	ActiveFPS       int     `yaml:"active_fps"`
	MaxHands        int     `yaml:"max_hands"`
	MinConfidence   float64 `yaml:"min_confidence"`
}

// SceneConfig describes the reference scene.
type SceneConfig struct {
	GraphFile      string  `yaml:"graph_file"`
	Width          float64 `yaml:"width"`
	Height         float64 `yaml:"height"`
	FOVDegrees     float64 `yaml:"fov_degrees"`
	Radius         float64 `yaml:"radius"`
	CameraDistance float64 `yaml:"camera_distance"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

// StoreConfig holds the database location.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// PluginConfig holds activation hook plugin settings.
type PluginConfig struct {
	Dir     string        `yaml:"dir"`
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// TrayConfig holds system tray settings.
type TrayConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	dataDir := DataDir()
	return &Config{
		Gesture: interact.DefaultConfig(),
		Sensor: SensorConfig{
			Source:          SourceCamera,
			CameraID:        0,
			MotionThreshold: 1.0,
			IdleFPS:         5,
			ActiveFPS:       30,
			MaxHands:        2,
			MinConfidence:   0.5,
		},
		Scene: SceneConfig{
			Width:          1280,
			Height:         720,
			FOVDegrees:     75,
			Radius:         150,
			CameraDistance: 500,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Store: StoreConfig{
			Path: filepath.Join(dataDir, "handgraph.db"),
		},
		Plugins: PluginConfig{
			Dir:     filepath.Join(dataDir, "plugins"),
			Timeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Tray: TrayConfig{
			Enabled: true,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Gesture.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("gesture: %w", err))
	}

	switch c.Sensor.Source {
	case SourceCamera, SourceWebSocket:
	default:
		errs = append(errs, fmt.Errorf("sensor.source must be %q or %q, got %q", SourceCamera, SourceWebSocket, c.Sensor.Source))
	}
	if c.Sensor.IdleFPS <= 0 || c.Sensor.ActiveFPS <= 0 {
		errs = append(errs, errors.New("sensor fps values must be positive"))
	}
	if c.Sensor.MaxHands < 1 || c.Sensor.MaxHands > 2 {
		errs = append(errs, fmt.Errorf("sensor.max_hands must be 1 or 2, got %d", c.Sensor.MaxHands))
	}

	if c.Scene.Width <= 0 || c.Scene.Height <= 0 {
		errs = append(errs, errors.New("scene width and height must be positive"))
	}
	if c.Scene.FOVDegrees <= 0 || c.Scene.FOVDegrees >= 180 {
		errs = append(errs, fmt.Errorf("scene.fov_degrees must be in (0, 180), got %v", c.Scene.FOVDegrees))
	}

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Store.Path == "" {
		errs = append(errs, errors.New("store.path is required"))
	}
	if c.Plugins.Timeout <= 0 {
		errs = append(errs, errors.New("plugins.timeout must be positive"))
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	return errors.Join(errs...)
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Handgraph")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Handgraph")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "handgraph")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "handgraph")
	}
}

// DataDir returns the directory holding the database and plugins.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".handgraph"
	}
	return filepath.Join(home, ".handgraph")
}
