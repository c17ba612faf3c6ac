// Package plugin discovers and runs external activation hook executables.
//
// A plugin is a directory holding a plugin.json manifest and an executable.
// The executable reads one JSON Request on stdin and writes one JSON
// Response on stdout.
package plugin

import (
	"encoding/json"
	"slices"
)

// Manifest describes a plugin.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Actions      []string        `json:"actions"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Supports reports whether the manifest lists action.
func (m Manifest) Supports(action string) bool {
	return slices.Contains(m.Actions, action)
}

// Node identifies the scene node an event concerns.
type Node struct {
	ID     int    `json:"id"`
	Key    string `json:"key"`
	Title  string `json:"title"`
	Status string `json:"status,omitempty"`
}

// Request is written to a plugin's stdin.
type Request struct {
	Action string          `json:"action"`
	Event  string          `json:"event"`
	Node   Node            `json:"node"`
	Config json.RawMessage `json:"config,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is read from a plugin's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin is a discovered plugin.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
