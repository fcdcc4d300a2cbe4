package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/atelier-labs/fitroom/internal/models"
	"github.com/atelier-labs/fitroom/internal/viewer"
)

// HandleViewer serves /api/viewer: GET returns the viewer state, POST
// /api/viewer/{op} drives the state machine for a thin web host.
func (h *Handler) HandleViewer(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" && r.URL.Path == "/api/viewer" {
		h.writeJSON(w, h.viewer.State())
		return
	}
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	op := strings.TrimPrefix(r.URL.Path, "/api/viewer/")
	switch op {
	case "open":
		var request struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		h.viewer.Open(h.resolveImage(request.ID))
	case "close":
		h.viewer.Close()
	case "cancel":
		h.viewer.Cancel()
	case "zoom":
		var request struct {
			Delta float64 `json:"delta"`
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		h.viewer.ZoomDelta(request.Delta)
	case "zoom-in":
		h.viewer.ZoomIn()
	case "zoom-out":
		h.viewer.ZoomOut()
	case "drag-start", "drag-move":
		var pt viewer.Offset
		if err := json.NewDecoder(r.Body).Decode(&pt); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		if op == "drag-start" {
			h.viewer.DragStart(pt)
		} else {
			h.viewer.DragMove(pt)
		}
	case "drag-end":
		h.viewer.DragEnd()
	case "reset":
		h.viewer.ResetView()
	default:
		h.writeError(w, "Unknown viewer operation", http.StatusNotFound)
		return
	}

	h.writeJSON(w, h.viewer.State())
}

// resolveImage maps a viewer open request to an image: the active result by
// default, or a history entry by id. Returns nil (a guarded no-op open) when
// nothing matches.
func (h *Handler) resolveImage(id string) *models.NormalizedImage {
	snapshot := h.session.Snapshot()
	if id == "" || (snapshot.ActiveResult != nil && snapshot.ActiveResult.ID == id) {
		return snapshot.ActiveResult
	}
	for i := range snapshot.History {
		if snapshot.History[i].ID == id {
			img := snapshot.History[i]
			return &img
		}
	}
	return nil
}
