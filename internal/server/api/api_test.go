package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/handgraph/internal/plugin"
	"github.com/ayusman/handgraph/internal/scene"
	"github.com/ayusman/handgraph/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

type fakePlugins map[string][]string

func (f fakePlugins) Resolve(name, action string) (*plugin.Plugin, error) {
	actions, ok := f[name]
	if !ok {
		return nil, plugin.ErrPluginNotFound
	}
	m := plugin.Manifest{Name: name, Actions: actions}
	if !m.Supports(action) {
		return nil, plugin.ErrActionNotSupported
	}
	return &plugin.Plugin{Manifest: m}, nil
}

func (f fakePlugins) List() []*plugin.Plugin {
	var out []*plugin.Plugin
	for name, actions := range f {
		out = append(out, &plugin.Plugin{Manifest: plugin.Manifest{Name: name, Actions: actions}})
	}
	return out
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, bytes.NewBufferString(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestHookHandler_Workflow(t *testing.T) {
	s := newTestStore(t)
	h := NewHookHandler(s, fakePlugins{"notify": {"show", "append"}})

	rec := do(t, h, http.MethodPost, "/api/hooks",
		`{"event_kind":"activate","plugin_name":"notify","action_name":"show","config":{"sound":"Ping"}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	created := decode[hookResponse](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.Enabled)
	assert.JSONEq(t, `{"sound":"Ping"}`, string(created.Config))

	rec = do(t, h, http.MethodGet, "/api/hooks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[listHooksResponse](t, rec)
	require.Len(t, listed.Hooks, 1)
	assert.Equal(t, created.ID, listed.Hooks[0].ID)

	rec = do(t, h, http.MethodPut, "/api/hooks/"+created.ID, `{"action_name":"append","enabled":false}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[hookResponse](t, rec)
	assert.Equal(t, "append", updated.ActionName)
	assert.False(t, updated.Enabled)

	rec = do(t, h, http.MethodGet, "/api/hooks/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "append", decode[hookResponse](t, rec).ActionName)

	rec = do(t, h, http.MethodDelete, "/api/hooks/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/hooks/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHookHandler_CreateValidation(t *testing.T) {
	s := newTestStore(t)
	h := NewHookHandler(s, fakePlugins{"notify": {"show"}})

	tests := []struct {
		name string
		body string
		want string
	}{
		{"invalid json", `{`, "Invalid JSON"},
		{"unknown kind", `{"event_kind":"wave","plugin_name":"notify","action_name":"show"}`, "event_kind"},
		{"missing plugin name", `{"event_kind":"grab","action_name":"show"}`, "plugin_name"},
		{"missing action name", `{"event_kind":"grab","plugin_name":"notify"}`, "action_name"},
		{"plugin not installed", `{"event_kind":"grab","plugin_name":"ghost","action_name":"show"}`, "Plugin not found"},
		{"action not offered", `{"event_kind":"grab","plugin_name":"notify","action_name":"speak"}`, "does not support"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/hooks", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode[errorResponse](t, rec).Error, tt.want)
		})
	}
}

func TestHookHandler_WithoutPluginCheck(t *testing.T) {
	h := NewHookHandler(newTestStore(t), nil)
	rec := do(t, h, http.MethodPost, "/api/hooks", `{"event_kind":"release","plugin_name":"later","action_name":"x","enabled":false}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.False(t, decode[hookResponse](t, rec).Enabled)
}

func TestHookHandler_Missing(t *testing.T) {
	h := NewHookHandler(newTestStore(t), nil)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPut, "/api/hooks/nope", `{}`).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/api/hooks/nope", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodPatch, "/api/hooks", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodPost, "/api/hooks/abc", "").Code)
}

func seedEvents(t *testing.T, s *store.Store) {
	t.Helper()
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	kinds := []store.EventKind{store.EventGrab, store.EventRelease, store.EventActivate, store.EventGrab, store.EventRelease}
	for i, k := range kinds {
		require.NoError(t, s.Events().Record(&store.Event{
			Kind:      k,
			NodeID:    i,
			NodeTitle: "node",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
}

func TestEventHandler_List(t *testing.T) {
	s := newTestStore(t)
	seedEvents(t, s)
	h := NewEventHandler(s)

	rec := do(t, h, http.MethodGet, "/api/events", "")
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[listEventsResponse](t, rec).Events
	require.Len(t, all, 5)
	assert.Equal(t, 4, all[0].NodeID)

	rec = do(t, h, http.MethodGet, "/api/events?limit=2", "")
	assert.Len(t, decode[listEventsResponse](t, rec).Events, 2)

	rec = do(t, h, http.MethodGet, "/api/events?kind=grab&limit=1", "")
	grabs := decode[listEventsResponse](t, rec).Events
	require.Len(t, grabs, 1)
	assert.Equal(t, store.EventGrab, grabs[0].Kind)
	assert.Equal(t, 3, grabs[0].NodeID)
}

func TestEventHandler_BadQueries(t *testing.T) {
	h := NewEventHandler(newTestStore(t))

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/events?limit=-1", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/events?limit=ten", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/events?kind=wave", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/events/other", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodPost, "/api/events", "").Code)
}

func TestEventHandler_Stats(t *testing.T) {
	s := newTestStore(t)
	seedEvents(t, s)

	rec := do(t, NewEventHandler(s), http.MethodGet, "/api/events/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[eventStatsResponse](t, rec)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 2, stats.Counts[store.EventGrab])
	assert.Equal(t, 1, stats.Counts[store.EventActivate])
}

func TestSceneHandler(t *testing.T) {
	g := scene.New(&scene.GraphData{
		Nodes: []scene.NodeData{{ID: "root", Title: "Root", IsCentral: true}, {ID: "leaf", Title: "Leaf"}},
		Links: []scene.LinkData{{Source: "leaf", Target: "root"}},
	}, scene.DefaultOptions())

	rec := do(t, NewSceneHandler(g), http.MethodGet, "/api/scene", "")
	require.Equal(t, http.StatusOK, rec.Code)

	snap := decode[scene.Snapshot](t, rec)
	require.Len(t, snap.Nodes, 2)
	assert.Equal(t, "root", snap.Nodes[0].Key)
	assert.Equal(t, [3]float64{0, 0, 0}, snap.Nodes[0].Position)
	assert.Equal(t, [][2]string{{"leaf", "root"}}, snap.Links)
	assert.Equal(t, 500.0, snap.Camera.Position[2])

	assert.Equal(t, http.StatusMethodNotAllowed, do(t, NewSceneHandler(g), http.MethodPost, "/api/scene", "").Code)
}

func TestPluginHandler(t *testing.T) {
	rec := do(t, NewPluginHandler(fakePlugins{"notify": {"show"}}), http.MethodGet, "/api/plugins", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[listPluginsResponse](t, rec)
	require.Len(t, resp.Plugins, 1)
	assert.Equal(t, "notify", resp.Plugins[0].Name)
}
