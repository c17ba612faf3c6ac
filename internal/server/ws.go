package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ayusman/handgraph/internal/detector"
	"github.com/ayusman/handgraph/internal/interact"
	"github.com/ayusman/handgraph/internal/scene"
)

const writeWait = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local clients only
	},
}

func writeJSON(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// frameMessage is one landmark frame from a browser or tracker client.
// Width and Height, when set, report the client's viewport.
type frameMessage struct {
	Hands  []detector.RawHand `json:"hands"`
	Width  float64            `json:"width,omitempty"`
	Height float64            `json:"height,omitempty"`
}

type frameReply struct {
	Status   interact.Status `json:"status"`
	Commands int             `json:"commands"`
}

// FrameIngest accepts landmark frames on a websocket and answers each one
// with the resulting status. When a client that sent frames goes away the
// sink is told the source was lost.
type FrameIngest struct {
	sink  FrameSink
	graph *scene.Graph
	log   *zap.Logger

	mu     sync.Mutex
	conns  map[*websocket.Conn]struct{}
	closed bool
}

func NewFrameIngest(sink FrameSink, graph *scene.Graph, log *zap.Logger) *FrameIngest {
	return &FrameIngest{sink: sink, graph: graph, log: log, conns: make(map[*websocket.Conn]struct{})}
}

func (f *FrameIngest) track(conn *websocket.Conn) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	f.conns[conn] = struct{}{}
	return true
}

func (f *FrameIngest) untrack(conn *websocket.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.conns, conn)
}

func (f *FrameIngest) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.log.Debug("websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	if !f.track(conn) {
		return
	}
	defer f.untrack(conn)

	fed := false
	defer func() {
		if fed {
			f.sink.SourceLost()
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			f.log.Debug("frame client gone", zap.Error(err))
			return
		}

		var msg frameMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			// A bad frame is dropped; the stream continues.
			f.log.Debug("malformed frame", zap.Error(err))
			continue
		}
		if f.graph != nil && msg.Width > 0 && msg.Height > 0 {
			f.graph.SetViewport(msg.Width, msg.Height)
		}

		res := f.sink.HandleRaw(msg.Hands)
		fed = true
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(frameReply{Status: res.Status, Commands: len(res.Commands)}); err != nil {
			return
		}
	}
}

// Close disconnects every frame client and refuses new ones.
func (f *FrameIngest) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	for conn := range f.conns {
		conn.Close()
	}
}

// Clients returns the number of connected frame clients.
func (f *FrameIngest) Clients() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.conns)
}

// StatusHub broadcasts status changes to websocket clients. It implements
// the app status sink.
type StatusHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	last    []byte
	log     *zap.Logger
}

func NewStatusHub(log *zap.Logger) *StatusHub {
	if log == nil {
		log = zap.NewNop()
	}
	return &StatusHub{clients: make(map[*websocket.Conn]struct{}), log: log}
}

// UpdateStatus sends s to every client. Clients that fail to keep up are
// dropped.
func (h *StatusHub) UpdateStatus(s interact.Status) {
	msg, err := json.Marshal(s)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = msg
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.Debug("dropping status client", zap.Error(err))
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

func (h *StatusHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	if h.last != nil {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		conn.WriteMessage(websocket.TextMessage, h.last)
	}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	// Clients only listen; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Clients returns the number of connected clients.
func (h *StatusHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *StatusHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}
