// Package server exposes the scene, journal and hooks over HTTP, takes
// landmark frames over a websocket and broadcasts the status channels.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/handgraph/internal/detector"
	"github.com/ayusman/handgraph/internal/interact"
	"github.com/ayusman/handgraph/internal/plugin"
	"github.com/ayusman/handgraph/internal/scene"
	"github.com/ayusman/handgraph/internal/server/api"
	"github.com/ayusman/handgraph/internal/store"
)

// FrameSink consumes landmark frames pushed by clients.
type FrameSink interface {
	HandleRaw(hands []detector.RawHand) interact.Result
	// SourceLost clears gesture state when a client stops sending.
	SourceLost() interact.Result
}

// Config holds the server collaborators. Routes whose collaborator is nil
// are not registered.
type Config struct {
	StaticDir string
	Store     *store.Store
	Graph     *scene.Graph
	Plugins   *plugin.Manager
	Frames    FrameSink
	Log       *zap.Logger
}

// Server is the HTTP front end.
type Server struct {
	config Config
	log    *zap.Logger
	mux    *http.ServeMux
	hub    *StatusHub
	ingest *FrameIngest
	start  time.Time

	mu   sync.Mutex
	http *http.Server
}

// New creates a Server and registers its routes.
func New(config Config) *Server {
	if config.Log == nil {
		config.Log = zap.NewNop()
	}
	s := &Server{
		config: config,
		log:    config.Log,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.hub = NewStatusHub(s.log.Named("status"))
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.Handle("/api/status", s.hub)

	if s.config.Graph != nil {
		s.mux.Handle("/api/scene", api.NewSceneHandler(s.config.Graph))
	}

	if s.config.Store != nil {
		events := api.NewEventHandler(s.config.Store)
		s.mux.Handle("/api/events", events)
		s.mux.Handle("/api/events/", events)

		var resolver api.PluginResolver
		if s.config.Plugins != nil {
			resolver = s.config.Plugins
		}
		hooks := api.NewHookHandler(s.config.Store, resolver)
		s.mux.Handle("/api/hooks", hooks)
		s.mux.Handle("/api/hooks/", hooks)
	}

	if s.config.Plugins != nil {
		s.mux.Handle("/api/plugins", api.NewPluginHandler(s.config.Plugins))
	}

	if s.config.Frames != nil {
		s.ingest = NewFrameIngest(s.config.Frames, s.config.Graph, s.log.Named("frames"))
		s.mux.Handle("/api/frames", s.ingest)
	}

	if s.config.StaticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// Hub returns the status broadcaster. Register it as a status sink.
func (s *Server) Hub() *StatusHub {
	return s.hub
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := map[string]any{
		"status":         "ok",
		"uptime":         time.Since(s.start).Round(time.Second).String(),
		"status_clients": s.hub.Clients(),
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, resp)
}

// ListenAndServe serves on addr until Shutdown. It returns nil after a
// clean shutdown.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.http = srv
	s.mu.Unlock()

	s.log.Info("http server listening", zap.String("addr", addr))
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the listener and closes the websocket clients, which
// http.Server.Shutdown leaves open.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	if s.ingest != nil {
		s.ingest.Close()
	}

	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
