package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/handgraph/internal/app"
	"github.com/ayusman/handgraph/internal/config"
	"github.com/ayusman/handgraph/internal/logger"
	"github.com/ayusman/handgraph/internal/plugin"
	"github.com/ayusman/handgraph/internal/scene"
	"github.com/ayusman/handgraph/internal/server"
	"github.com/ayusman/handgraph/internal/store"
	"github.com/ayusman/handgraph/internal/tray"
)

func main() {
	var flags config.Flags
	flags.Register(flag.CommandLine)
	flag.Parse()

	if err := run(&flags); err != nil {
		fmt.Fprintf(os.Stderr, "handgraph: %v\n", err)
		os.Exit(1)
	}
}

func run(flags *config.Flags) error {
	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	log := logger.Named("main")

	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	graph, err := loadScene(cfg.Scene, log)
	if err != nil {
		return err
	}

	plugins := plugin.NewManager(cfg.Plugins.Dir, logger.Named("plugins"))
	if err := plugins.Discover(); err != nil {
		log.Warn("plugin discovery failed", zap.String("dir", cfg.Plugins.Dir), zap.Error(err))
	}

	a, err := app.New(app.Config{
		Gesture:  cfg.Gesture,
		Sensor:   cfg.Sensor,
		Graph:    graph,
		Store:    st,
		Plugins:  plugins,
		Executor: plugin.NewExecutor(cfg.Plugins.Timeout),
		Log:      logger.Named("app"),
	})
	if err != nil {
		return err
	}

	staticDir := cfg.Server.StaticDir
	if staticDir == "" {
		staticDir = findWebDir()
	}
	if staticDir != "" {
		log.Info("serving static files", zap.String("dir", staticDir))
	}

	srv := server.New(server.Config{
		StaticDir: staticDir,
		Store:     st,
		Graph:     graph,
		Plugins:   plugins,
		Frames:    a,
		Log:       logger.Named("server"),
	})
	a.AddSink(srv.Hub())

	if err := a.Start(); err != nil {
		if !errors.Is(err, app.ErrSensorUnavailable) {
			return err
		}
		// The server and websocket ingest still work without a camera.
		log.Warn("sensor unavailable", zap.Error(err))
	}
	defer a.Stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe(cfg.Server.Addr)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	wait := func() error {
		select {
		case <-ctx.Done():
			return nil
		case err := <-serveErr:
			return err
		}
	}

	var runErr error
	if cfg.Tray.Enabled {
		t := tray.New(a.Enabled())
		t.OnToggle(a.SetEnabled)
		t.OnSettings(func() {
			if err := openBrowser(settingsURL(cfg.Server.Addr)); err != nil {
				log.Warn("open settings", zap.Error(err))
			}
		})
		a.AddSink(t)

		done := make(chan error, 1)
		go func() {
			done <- wait()
			t.Quit()
		}()
		t.Run()
		stop() // unblocks wait when the menu quit first
		runErr = <-done
	} else {
		runErr = wait()
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	return runErr
}

// loadScene reads the configured graph file. Without one the scene starts
// empty and frames still drive the camera.
func loadScene(cfg config.SceneConfig, log *zap.Logger) (*scene.Graph, error) {
	data := &scene.GraphData{}
	if cfg.GraphFile != "" {
		var err error
		data, err = scene.LoadGraphData(cfg.GraphFile)
		if err != nil {
			return nil, err
		}
	} else {
		log.Warn("no graph file configured, starting with an empty scene")
	}

	log.Info("scene loaded", zap.Int("nodes", len(data.Nodes)), zap.Int("links", len(data.Links)))
	return scene.New(data, scene.Options{
		Width:          cfg.Width,
		Height:         cfg.Height,
		FOVDegrees:     cfg.FOVDegrees,
		Radius:         cfg.Radius,
		CameraDistance: cfg.CameraDistance,
	}), nil
}

// findWebDir checks "web", "../web", "../../web" and the data directory.
func findWebDir() string {
	candidates := []string{"web", "../web", "../../web", filepath.Join(config.DataDir(), "web")}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

func settingsURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
