package handlers

import (
	"encoding/json"
	"net/http"
)

// HandleSession serves /api/session: GET returns the current snapshot,
// DELETE clears the whole session.
func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.writeJSON(w, h.session.Snapshot())
	case "DELETE":
		h.session.Reset()
		h.writeJSON(w, h.session.Snapshot())
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandlePrompt serves /api/prompt: POST stores the custom generation prompt.
func (h *Handler) HandlePrompt(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	h.session.SetPrompt(request.Prompt)
	h.writeJSON(w, h.session.Snapshot())
}
