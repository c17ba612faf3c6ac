package capture

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/handgraph/internal/detector"
)

// ErrServiceNotFound is returned when the tracker service script is missing.
var ErrServiceNotFound = errors.New("mediapipe_service.py not found")

const serviceScript = "mediapipe_service.py"

// MediaPipeDetector runs hand tracking in a Python MediaPipe subprocess.
// Frames go to its stdin as a 4-byte big-endian length and JPEG bytes; each
// frame is answered by one JSON line {"hands": [...]}.
type MediaPipeDetector struct {
	config DetectorConfig
	script string
	python string

	mu      sync.Mutex
	proc    *exec.Cmd
	in      io.WriteCloser
	out     *bufio.Reader
	idle    *time.Timer
	dropped int
}

// NewMediaPipeDetector locates the service script. The subprocess starts on
// the first Detect and stops again after IdleTimeout without frames.
func NewMediaPipeDetector(config DetectorConfig) (*MediaPipeDetector, error) {
	def := DefaultDetectorConfig()
	if config.MaxHands <= 0 {
		config.MaxHands = def.MaxHands
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = def.IdleTimeout
	}

	script := config.ScriptPath
	if script == "" {
		script = locate(searchDirs("scripts"), serviceScript)
	} else if _, err := os.Stat(script); err != nil {
		script = ""
	}
	if script == "" {
		return nil, ErrServiceNotFound
	}

	python := config.Python
	if python == "" {
		python = locate(searchDirs("venv"), filepath.Join("bin", "python"))
	}
	if python == "" {
		python = "python3"
	}

	return &MediaPipeDetector{config: config, script: script, python: python}, nil
}

// searchDirs lists where a bundled directory may live: the working
// directory and its parents, next to the binary, and the data directory.
func searchDirs(name string) []string {
	dirs := []string{name, filepath.Join("..", name), filepath.Join("..", "..", name)}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Join(filepath.Dir(exe), name))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".handgraph", name))
	}
	return dirs
}

// locate returns the absolute path of the first dir/file that exists.
func locate(dirs []string, file string) string {
	for _, dir := range dirs {
		path := filepath.Join(dir, file)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return ""
}

// Detect sends frame to the tracker and returns at most MaxHands valid hands.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]detector.HandLandmarks, error) {
	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.start(); err != nil {
		return nil, err
	}
	if err := writeFrame(d.in, buf.GetBytes()); err != nil {
		d.stop()
		return nil, err
	}
	raw, err := readHands(d.out)
	if err != nil {
		d.stop()
		return nil, err
	}

	hands, dropped := detector.ConvertHands(raw)
	d.dropped += dropped
	if len(hands) > d.config.MaxHands {
		hands = hands[:d.config.MaxHands]
	}

	if d.idle == nil {
		d.idle = time.AfterFunc(d.config.IdleTimeout, func() { d.Close() })
	} else {
		d.idle.Reset(d.config.IdleTimeout)
	}
	return hands, nil
}

func writeFrame(w io.Writer, data []byte) error {
	var size [4]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(data)))
	if _, err := w.Write(size[:]); err != nil {
		return fmt.Errorf("write frame size: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

func readHands(r *bufio.Reader) ([]detector.RawHand, error) {
	line, err := r.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read tracker reply: %w", err)
	}
	var reply struct {
		Hands []detector.RawHand `json:"hands"`
	}
	if err := json.Unmarshal(line, &reply); err != nil {
		return nil, fmt.Errorf("parse tracker reply: %w", err)
	}
	return reply.Hands, nil
}

func (d *MediaPipeDetector) start() error {
	if d.proc != nil {
		return nil
	}

	cmd := exec.Command(d.python, d.script,
		"--max-hands", strconv.Itoa(d.config.MaxHands),
		"--min-confidence", strconv.FormatFloat(d.config.MinConfidence, 'f', 2, 64),
		"--min-tracking", strconv.FormatFloat(d.config.MinTrackingConf, 'f', 2, 64),
	)
	cmd.Stderr = os.Stderr

	in, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("tracker stdin: %w", err)
	}
	out, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("tracker stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start tracker: %w", err)
	}

	d.proc, d.in, d.out = cmd, in, bufio.NewReader(out)
	return nil
}

// stop closes stdin, which makes the service exit, and reaps it.
func (d *MediaPipeDetector) stop() error {
	if d.idle != nil {
		d.idle.Stop()
		d.idle = nil
	}
	if d.proc == nil {
		return nil
	}
	d.in.Close()
	err := d.proc.Wait()
	d.proc, d.in, d.out = nil, nil, nil
	return err
}

// Close stops the tracker service. Detect restarts it.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stop()
}

// Dropped returns how many malformed hands the tracker has returned.
func (d *MediaPipeDetector) Dropped() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}
