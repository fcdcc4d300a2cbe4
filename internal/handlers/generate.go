package handlers

import (
	"errors"
	"net/http"

	"github.com/atelier-labs/fitroom/internal/session"
)

// HandleGenerate serves POST /api/generate, invoking the generation
// collaborator with the two slot images. The collaborator's error message is
// returned verbatim; the session keeps its prior result and history on
// failure.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if _, err := h.session.Generate(r.Context()); err != nil {
		switch {
		case errors.Is(err, session.ErrSlotsEmpty):
			h.writeError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, session.ErrGenerationInFlight):
			h.writeError(w, err.Error(), http.StatusConflict)
		default:
			h.writeError(w, err.Error(), http.StatusBadGateway)
		}
		return
	}

	h.writeJSON(w, h.session.Snapshot())
}
