package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/atelier-labs/fitroom/internal/imaging"
)

// HandleDownload serves GET /api/result/download, writing the active
// result's decoded bytes under a filename derived from the current time and
// the media type's subtype.
func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshot := h.session.Snapshot()
	if snapshot.ActiveResult == nil {
		h.writeError(w, "No result to download", http.StatusNotFound)
		return
	}

	data, err := imaging.Bytes(*snapshot.ActiveResult)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("tryon-%d.%s", time.Now().Unix(), imaging.Subtype(snapshot.ActiveResult.MimeType))
	w.Header().Set("Content-Type", snapshot.ActiveResult.MimeType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if _, err := w.Write(data); err != nil {
		h.writeError(w, "Failed to write image: "+err.Error(), http.StatusInternalServerError)
	}
}
