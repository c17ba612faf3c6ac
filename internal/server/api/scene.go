package api

import (
	"net/http"

	"github.com/ayusman/handgraph/internal/plugin"
	"github.com/ayusman/handgraph/internal/scene"
)

// SceneHandler serves GET /api/scene, a snapshot of camera and nodes.
type SceneHandler struct {
	graph *scene.Graph
}

func NewSceneHandler(g *scene.Graph) *SceneHandler {
	return &SceneHandler{graph: g}
}

func (h *SceneHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.graph.Snapshot())
}

// PluginLister lists installed plugins.
type PluginLister interface {
	List() []*plugin.Plugin
}

// PluginHandler serves GET /api/plugins.
type PluginHandler struct {
	plugins PluginLister
}

func NewPluginHandler(p PluginLister) *PluginHandler {
	return &PluginHandler{plugins: p}
}

type listPluginsResponse struct {
	Plugins []plugin.Manifest `json:"plugins"`
}

func (h *PluginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	plugins := h.plugins.List()
	resp := listPluginsResponse{Plugins: make([]plugin.Manifest, 0, len(plugins))}
	for _, p := range plugins {
		resp.Plugins = append(resp.Plugins, p.Manifest)
	}
	writeJSON(w, http.StatusOK, resp)
}
