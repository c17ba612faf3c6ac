package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/handgraph/internal/plugin"
	"github.com/ayusman/handgraph/internal/store"
)

// PluginResolver checks that a plugin offers an action.
type PluginResolver interface {
	Resolve(name, action string) (*plugin.Plugin, error)
}

// HookHandler serves /api/hooks and /api/hooks/{id}.
type HookHandler struct {
	store   *store.Store
	plugins PluginResolver
}

// NewHookHandler returns a hook handler. When plugins is non-nil, new and
// updated bindings must name an installed plugin action.
func NewHookHandler(s *store.Store, plugins PluginResolver) *HookHandler {
	return &HookHandler{store: s, plugins: plugins}
}

func (h *HookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := itemID(r.URL.Path, "/api/hooks")

	if id == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type createHookRequest struct {
	EventKind  store.EventKind `json:"event_kind"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    *bool           `json:"enabled"`
}

type updateHookRequest struct {
	EventKind  store.EventKind `json:"event_kind"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    *bool           `json:"enabled"`
}

type hookResponse struct {
	ID         string          `json:"id"`
	EventKind  store.EventKind `json:"event_kind"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    bool            `json:"enabled"`
	CreatedAt  string          `json:"created_at"`
}

type listHooksResponse struct {
	Hooks []hookResponse `json:"hooks"`
}

func toHookResponse(hk *store.Hook) hookResponse {
	config := hk.Config
	if len(config) == 0 {
		config = json.RawMessage("{}")
	}
	return hookResponse{
		ID:         hk.ID,
		EventKind:  hk.EventKind,
		PluginName: hk.PluginName,
		ActionName: hk.ActionName,
		Config:     config,
		Enabled:    hk.Enabled,
		CreatedAt:  hk.CreatedAt.Format(time.RFC3339),
	}
}

func (h *HookHandler) list(w http.ResponseWriter) {
	hooks, err := h.store.Hooks().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list hooks")
		return
	}

	resp := listHooksResponse{Hooks: make([]hookResponse, 0, len(hooks))}
	for _, hk := range hooks {
		resp.Hooks = append(resp.Hooks, toHookResponse(hk))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HookHandler) get(w http.ResponseWriter, id string) {
	hk, err := h.store.Hooks().GetByID(id)
	if err != nil {
		h.storeError(w, err, "Failed to get hook")
		return
	}
	writeJSON(w, http.StatusOK, toHookResponse(hk))
}

// checkBinding validates the kind and, when plugins are known, the target.
func (h *HookHandler) checkBinding(w http.ResponseWriter, hk *store.Hook) bool {
	if !hk.EventKind.Valid() {
		writeError(w, http.StatusBadRequest, "event_kind must be activate, grab or release")
		return false
	}
	if hk.PluginName == "" {
		writeError(w, http.StatusBadRequest, "plugin_name is required")
		return false
	}
	if hk.ActionName == "" {
		writeError(w, http.StatusBadRequest, "action_name is required")
		return false
	}
	if len(hk.Config) > 0 && !json.Valid(hk.Config) {
		writeError(w, http.StatusBadRequest, "config must be JSON")
		return false
	}
	if h.plugins == nil {
		return true
	}

	_, err := h.plugins.Resolve(hk.PluginName, hk.ActionName)
	switch {
	case errors.Is(err, plugin.ErrPluginNotFound):
		writeError(w, http.StatusBadRequest, "Plugin not found")
		return false
	case errors.Is(err, plugin.ErrActionNotSupported):
		writeError(w, http.StatusBadRequest, "Plugin does not support action")
		return false
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to resolve plugin")
		return false
	}
	return true
}

func (h *HookHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createHookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	hk := &store.Hook{
		ID:         uuid.New().String(),
		EventKind:  req.EventKind,
		PluginName: req.PluginName,
		ActionName: req.ActionName,
		Config:     req.Config,
		Enabled:    req.Enabled == nil || *req.Enabled,
	}
	if !h.checkBinding(w, hk) {
		return
	}

	if err := h.store.Hooks().Create(hk); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create hook")
		return
	}
	writeJSON(w, http.StatusCreated, toHookResponse(hk))
}

func (h *HookHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	hk, err := h.store.Hooks().GetByID(id)
	if err != nil {
		h.storeError(w, err, "Failed to get hook")
		return
	}

	var req updateHookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.EventKind != "" {
		hk.EventKind = req.EventKind
	}
	if req.PluginName != "" {
		hk.PluginName = req.PluginName
	}
	if req.ActionName != "" {
		hk.ActionName = req.ActionName
	}
	if req.Config != nil {
		hk.Config = req.Config
	}
	if req.Enabled != nil {
		hk.Enabled = *req.Enabled
	}
	if !h.checkBinding(w, hk) {
		return
	}

	if err := h.store.Hooks().Update(hk); err != nil {
		h.storeError(w, err, "Failed to update hook")
		return
	}
	writeJSON(w, http.StatusOK, toHookResponse(hk))
}

func (h *HookHandler) delete(w http.ResponseWriter, id string) {
	if err := h.store.Hooks().Delete(id); err != nil {
		h.storeError(w, err, "Failed to delete hook")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HookHandler) storeError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Hook not found")
		return
	}
	writeError(w, http.StatusInternalServerError, msg)
}
