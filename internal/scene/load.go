// Package scene is an in-memory reference scene: a node graph with a
// perspective camera and a light physics step. It implements interact.Scene
// and applies interact commands.
package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// NodeData is one node of a graph_data.json document.
type NodeData struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Author      string  `json:"author,omitempty"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status,omitempty"`
	CreatedAt   string  `json:"created_at,omitempty"`
	IsCentral   bool    `json:"isCentral,omitempty"`
	Val         float64 `json:"val,omitempty"`
	ParentID    string  `json:"parent_id,omitempty"`
}

// LinkData connects two nodes by their string ids.
type LinkData struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type,omitempty"`
}

// GraphData is the graph_data.json document.
type GraphData struct {
	Nodes []NodeData `json:"nodes"`
	Links []LinkData `json:"links"`
}

// ParseGraphData decodes a graph document.
func ParseGraphData(r io.Reader) (*GraphData, error) {
	var data GraphData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode graph data: %w", err)
	}

	seen := make(map[string]bool, len(data.Nodes))
	for i, n := range data.Nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("node %d: missing id", i)
		}
		if seen[n.ID] {
			return nil, fmt.Errorf("node %q: duplicate id", n.ID)
		}
		seen[n.ID] = true
	}
	return &data, nil
}

// LoadGraphData reads a graph document from disk.
func LoadGraphData(path string) (*GraphData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open graph data: %w", err)
	}
	defer f.Close()

	return ParseGraphData(f)
}
