package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/atelier-labs/fitroom/internal/imaging"
	"github.com/atelier-labs/fitroom/internal/models"
	"github.com/atelier-labs/fitroom/internal/session"
)

const maxUploadBytes = 10 * 1024 * 1024

// HandleSlot serves /api/slots/{model|garment}: POST uploads an image into
// the slot (multipart file or JSON image URL), DELETE empties it, and
// POST .../aspect overrides the stored aspect class.
func (h *Handler) HandleSlot(w http.ResponseWriter, r *http.Request) {
	slot, tail, ok := parseSlot(r.URL.Path)
	if !ok {
		h.writeError(w, "Unknown slot", http.StatusNotFound)
		return
	}

	if tail == "aspect" {
		h.handleAspectOverride(w, r, slot)
		return
	}
	if tail != "" {
		h.writeError(w, "Not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case "POST":
		contentType := r.Header.Get("Content-Type")
		if strings.Contains(contentType, "application/json") {
			h.handleURLUpload(w, r, slot)
			return
		}
		h.handleFileUpload(w, r, slot)
	case "DELETE":
		h.session.ClearSlot(slot)
		h.writeJSON(w, h.session.Snapshot())
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleFileUpload(w http.ResponseWriter, r *http.Request, slot session.Slot) {
	file, header, err := r.FormFile("files")
	if err != nil {
		file, header, err = r.FormFile("file")
		if err != nil {
			h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	defer file.Close()

	// Drag-and-drop clients send the browser MIME type with the part;
	// filter non-images before they reach the decoder.
	if mime := header.Header.Get("Content-Type"); mime != "" && !imaging.IsImageMIME(mime) {
		h.writeError(w, "Not an image: "+mime, http.StatusBadRequest)
		return
	}

	// Read one byte past the cap so a file of exactly maxUploadBytes is
	// accepted and anything larger is rejected.
	fileData, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if len(fileData) > maxUploadBytes {
		h.writeError(w, "File too large (max 10MB)", http.StatusBadRequest)
		return
	}

	h.ingestIntoSlot(w, slot, fileData)
}

func (h *Handler) handleURLUpload(w http.ResponseWriter, r *http.Request, slot session.Slot) {
	var request struct {
		ImageURL string `json:"image_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if request.ImageURL == "" {
		h.writeError(w, "image_url is required", http.StatusBadRequest)
		return
	}

	imageData, err := h.downloadImageFromURL(request.ImageURL)
	if err != nil {
		h.writeError(w, "Failed to process image URL: "+err.Error(), http.StatusBadRequest)
		return
	}

	h.ingestIntoSlot(w, slot, imageData)
}

func (h *Handler) ingestIntoSlot(w http.ResponseWriter, slot session.Slot, data []byte) {
	img, err := imaging.Ingest(data)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.session.SetSlot(slot, *img)
	h.writeJSON(w, h.session.Snapshot())
}

func (h *Handler) handleAspectOverride(w http.ResponseWriter, r *http.Request, slot session.Slot) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		Aspect models.Aspect `json:"aspect"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.session.OverrideAspect(slot, request.Aspect); err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.writeJSON(w, h.session.Snapshot())
}

func (h *Handler) downloadImageFromURL(imageURL string) ([]byte, error) {
	resp, err := http.Get(imageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}

	if mime := resp.Header.Get("Content-Type"); mime != "" && !imaging.IsImageMIME(mime) {
		return nil, fmt.Errorf("URL is not an image: %s", mime)
	}

	imageData, err := io.ReadAll(io.LimitReader(resp.Body, maxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if len(imageData) > maxUploadBytes {
		return nil, fmt.Errorf("image too large (max 10MB)")
	}

	return imageData, nil
}
