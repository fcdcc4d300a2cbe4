package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/atelier-labs/fitroom/internal/session"
	"github.com/atelier-labs/fitroom/internal/viewer"
)

type Handler struct {
	session *session.Controller
	viewer  *viewer.Machine
}

func New(c *session.Controller, v *viewer.Machine) *Handler {
	return &Handler{session: c, viewer: v}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// parseSlot resolves the slot segment of a /api/slots/ path. The remainder
// after the slot name (if any) is returned with its leading slash stripped.
func parseSlot(path string) (session.Slot, string, bool) {
	rest := strings.TrimPrefix(path, "/api/slots/")
	name, tail, _ := strings.Cut(rest, "/")
	switch name {
	case "model":
		return session.SlotModel, tail, true
	case "garment":
		return session.SlotGarment, tail, true
	}
	return "", "", false
}
