package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single plugin run.
const DefaultTimeout = 5 * time.Second

// ErrTimeout is returned when a plugin outlives its timeout.
var ErrTimeout = errors.New("plugin timed out")

// Executor runs plugin executables.
type Executor struct {
	timeout time.Duration
}

// NewExecutor returns an executor with the given per-run timeout.
// Non-positive values use DefaultTimeout.
func NewExecutor(timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{timeout: timeout}
}

// Timeout returns the per-run timeout.
func (e *Executor) Timeout() time.Duration {
	return e.timeout
}

// Execute pipes req to the plugin and decodes its response. The run is
// cancelled when ctx ends or the timeout passes.
func (e *Executor) Execute(ctx context.Context, p *Plugin, req *Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	cmd := exec.CommandContext(ctx, p.Executable)
	cmd.Dir = p.Path
	cmd.Stdin = bytes.NewReader(payload)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w after %s: %s", ErrTimeout, e.timeout, p.Manifest.Name)
	}
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("run %s: %w: %s", p.Manifest.Name, err, msg)
		}
		return nil, fmt.Errorf("run %s: %w", p.Manifest.Name, err)
	}

	var resp Response
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("parse %s response: %w", p.Manifest.Name, err)
	}
	return &resp, nil
}
