package handlers

import (
	"net/http"
	"strings"
)

// HandleHistory serves GET /api/history, returning entries in derived
// display order: favorites first, then descending recency.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, h.session.HistoryOrder())
}

// HandleHistoryItem serves /api/history/{id}/{favorite|select}.
func (h *Handler) HandleHistoryItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/history/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		h.writeError(w, "Missing history id", http.StatusBadRequest)
		return
	}

	switch action {
	case "favorite":
		h.session.ToggleFavorite(id)
	case "select":
		h.session.SelectResult(id)
	default:
		h.writeError(w, "Unknown history action", http.StatusNotFound)
		return
	}

	h.writeJSON(w, h.session.Snapshot())
}
