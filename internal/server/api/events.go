package api

import (
	"net/http"

	"github.com/ayusman/handgraph/internal/store"
)

// DefaultEventLimit caps /api/events when no limit is given.
const DefaultEventLimit = 50

// EventHandler serves the interaction journal: /api/events lists recent
// events and /api/events/stats counts them per kind.
type EventHandler struct {
	store *store.Store
}

func NewEventHandler(s *store.Store) *EventHandler {
	return &EventHandler{store: s}
}

type listEventsResponse struct {
	Events []store.Event `json:"events"`
}

type eventStatsResponse struct {
	Counts map[store.EventKind]int `json:"counts"`
	Total  int                     `json:"total"`
}

func (h *EventHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch itemID(r.URL.Path, "/api/events") {
	case "":
		h.list(w, r)
	case "stats":
		h.stats(w)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (h *EventHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, ok := intParam(r, "limit", DefaultEventLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return
	}
	kind := store.EventKind(r.URL.Query().Get("kind"))
	if kind != "" && !kind.Valid() {
		writeError(w, http.StatusBadRequest, "unknown kind")
		return
	}

	// Filtering happens after the limit query; fetch everything when a kind
	// is requested so the limit applies to matching events.
	fetch := limit
	if kind != "" {
		fetch = 0
	}
	events, err := h.store.Events().List(fetch)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}

	if kind != "" {
		filtered := events[:0]
		for _, e := range events {
			if e.Kind == kind {
				filtered = append(filtered, e)
			}
		}
		events = filtered
		if limit > 0 && len(events) > limit {
			events = events[:limit]
		}
	}
	writeJSON(w, http.StatusOK, listEventsResponse{Events: events})
}

func (h *EventHandler) stats(w http.ResponseWriter) {
	counts, err := h.store.Events().CountByKind()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count events")
		return
	}

	resp := eventStatsResponse{Counts: counts}
	for _, n := range counts {
		resp.Total += n
	}
	writeJSON(w, http.StatusOK, resp)
}
