// Command notify is a handgraph hook plugin. "show" raises a desktop
// notification naming the node; "append" writes a line to a logbook file.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

type node struct {
	ID     int    `json:"id"`
	Key    string `json:"key"`
	Title  string `json:"title"`
	Status string `json:"status,omitempty"`
}

type request struct {
	Action string          `json:"action"`
	Event  string          `json:"event"`
	Node   node            `json:"node"`
	Config json.RawMessage `json:"config,omitempty"`
}

type response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type config struct {
	Sound string `json:"sound"`
	Path  string `json:"path"`
}

// runner executes an external command; swapped in tests.
var runner = func(name string, args ...string) error {
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

var now = time.Now

func main() {
	json.NewEncoder(os.Stdout).Encode(handle(os.Stdin))
}

func handle(in io.Reader) response {
	var req request
	if err := json.NewDecoder(in).Decode(&req); err != nil {
		return failure(fmt.Errorf("decode request: %w", err))
	}

	var cfg config
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			return failure(fmt.Errorf("decode config: %w", err))
		}
	}

	msg := message(req)
	var err error
	switch req.Action {
	case "show":
		err = show(msg, cfg)
	case "append":
		err = appendLine(msg, cfg)
	default:
		err = fmt.Errorf("unknown action: %s", req.Action)
	}
	if err != nil {
		return failure(err)
	}

	data, _ := json.Marshal(map[string]string{"message": msg})
	return response{Success: true, Data: data}
}

func failure(err error) response {
	return response{Success: false, Error: err.Error()}
}

func message(req request) string {
	title := req.Node.Title
	if title == "" {
		title = fmt.Sprintf("node %d", req.Node.ID)
	}
	verb := map[string]string{
		"activate": "Opened",
		"grab":     "Grabbed",
		"release":  "Released",
	}[req.Event]
	if verb == "" {
		verb = "Touched"
	}
	if req.Node.Status != "" {
		return fmt.Sprintf("%s %s (%s)", verb, title, req.Node.Status)
	}
	return fmt.Sprintf("%s %s", verb, title)
}

func show(msg string, cfg config) error {
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q", msg, "handgraph")
		if cfg.Sound != "" {
			script += fmt.Sprintf(" sound name %q", cfg.Sound)
		}
		return runner("osascript", "-e", script)
	case "linux":
		return runner("notify-send", "handgraph", msg)
	default:
		return fmt.Errorf("notifications not supported on %s", runtime.GOOS)
	}
}

func appendLine(msg string, cfg config) error {
	if cfg.Path == "" {
		return errors.New("append needs config.path")
	}
	f, err := os.OpenFile(cfg.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "%s\t%s\n", now().Format(time.RFC3339), msg)
	return err
}
