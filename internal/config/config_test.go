package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, SourceCamera, cfg.Sensor.Source)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Tray.Enabled)
	assert.Equal(t, 1500*time.Millisecond, cfg.Gesture.DwellDuration)
	assert.Equal(t, 0.15, cfg.Gesture.RotateEnterThreshold)
	assert.Equal(t, 0.12, cfg.Gesture.RotateExitThreshold)
	assert.Equal(t, "handgraph.db", filepath.Base(cfg.Store.Path))
	assert.NoError(t, cfg.Validate())
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
gesture:
  dwell_duration: 2s
  rotate_exit_threshold: 0.1
  mirror_x: false
sensor:
  source: websocket
scene:
  graph_file: /tmp/graph_data.json
  fov_degrees: 60
plugins:
  timeout: 10s
logging:
  level: warn
`)

	cfg, err := Load(&Flags{ConfigPath: path})
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.Gesture.DwellDuration)
	assert.Equal(t, 0.1, cfg.Gesture.RotateExitThreshold)
	assert.False(t, cfg.Gesture.MirrorX)
	assert.Equal(t, SourceWebSocket, cfg.Sensor.Source)
	assert.Equal(t, "/tmp/graph_data.json", cfg.Scene.GraphFile)
	assert.Equal(t, 60.0, cfg.Scene.FOVDegrees)
	assert.Equal(t, 10*time.Second, cfg.Plugins.Timeout)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// untouched values keep defaults
	assert.Equal(t, 0.15, cfg.Gesture.RotateEnterThreshold)
	assert.Equal(t, 1280.0, cfg.Scene.Width)
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
tray:
  enabled: true
`)

	var flags Flags
	fs := flag.NewFlagSet("handgraph", flag.ContinueOnError)
	flags.Register(fs)
	require.NoError(t, fs.Parse([]string{
		"-config", path,
		"-debug",
		"-addr", ":7000",
		"-graph", "graph.json",
		"-source", "websocket",
		"-no-tray",
	}))

	cfg, err := Load(&flags)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "graph.json", cfg.Scene.GraphFile)
	assert.Equal(t, SourceWebSocket, cfg.Sensor.Source)
	assert.False(t, cfg.Tray.Enabled)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(&Flags{ConfigPath: filepath.Join(t.TempDir(), "nope.yaml")})
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(&Flags{ConfigPath: writeConfig(t, "gesture: [")})
		assert.Error(t, err)
	})

	t.Run("inconsistent tuning", func(t *testing.T) {
		path := writeConfig(t, `
gesture:
  min_distance: 500
  max_distance: 100
`)
		_, err := Load(&Flags{ConfigPath: path})
		assert.ErrorContains(t, err, "min_distance")
	})

	t.Run("unknown source", func(t *testing.T) {
		path := writeConfig(t, "sensor:\n  source: kinect\n")
		_, err := Load(&Flags{ConfigPath: path})
		assert.ErrorContains(t, err, "sensor.source")
	})

	t.Run("unknown log level", func(t *testing.T) {
		path := writeConfig(t, "logging:\n  level: chatty\n")
		_, err := Load(&Flags{ConfigPath: path})
		assert.Error(t, err)
	})
}

func TestSaveTo_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Gesture.ReleaseGrace = 750 * time.Millisecond
	cfg.Sensor.CameraID = 2
	cfg.Scene.GraphFile = "tasks.json"

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, cfg.SaveTo(path))

	loaded, err := Load(&Flags{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
