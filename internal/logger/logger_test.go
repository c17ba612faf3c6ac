package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"debug", zapcore.DebugLevel, false},
		{"", zapcore.InfoLevel, false},
		{"INFO", zapcore.InfoLevel, false},
		{"warn", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"verbose", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInitWithFileConfig_WritesJSONLines(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "handgraph.log")

	cfg := DefaultFileConfig(logFile)
	cfg.Compress = false
	require.NoError(t, InitWithFileConfig("debug", cfg, false))
	t.Cleanup(func() { Log = zap.NewNop(); Sugar = Log.Sugar() })

	Named("engine").Debug("node grabbed", zap.Int("node", 3))
	Sugar.Infof("started on %s", ":8080")
	Sync()

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "node grabbed", entry["msg"])
	assert.Equal(t, "engine", entry["logger"])
	assert.EqualValues(t, 3, entry["node"])
}

func TestInitWithFileConfig_LevelFilters(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "handgraph.log")

	require.NoError(t, InitWithFileConfig("warn", FileConfig{Path: logFile, MaxSizeMB: 1}, false))
	t.Cleanup(func() { Log = zap.NewNop(); Sugar = Log.Sugar() })

	Log.Info("dropped")
	Log.Warn("kept")
	Sync()

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "kept")
}

func TestInit_RejectsUnknownLevel(t *testing.T) {
	assert.Error(t, Init("loud", ""))
}
