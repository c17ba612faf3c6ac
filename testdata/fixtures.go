// Package testdata embeds fixtures shared by package and end-to-end tests.
package testdata

import (
	"embed"
	"fmt"
)

//go:embed graphs/*
var graphsFS embed.FS

// LoadGraph returns the raw JSON of a sample graph by name, e.g. "tasks.json".
func LoadGraph(name string) ([]byte, error) {
	data, err := graphsFS.ReadFile("graphs/" + name)
	if err != nil {
		return nil, fmt.Errorf("load graph %s: %w", name, err)
	}
	return data, nil
}
