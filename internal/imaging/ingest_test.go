package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/atelier-labs/fitroom/internal/models"
)

func encodeTestImage(t *testing.T, w, h int, format string) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	default:
		err = jpeg.Encode(&buf, img, nil)
	}
	if err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func decodeResult(t *testing.T, img *models.NormalizedImage) image.Config {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(img.Data)
	if err != nil {
		t.Fatalf("Result payload is not base64: %v", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Result payload is not decodable: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("Expected jpeg payload, got %s", format)
	}
	return cfg
}

func TestConstrainDimensions(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{name: "wide above limit", w: 2000, h: 1000, wantW: 1024, wantH: 512},
		{name: "tall above limit", w: 1000, h: 2000, wantW: 512, wantH: 1024},
		{name: "within limit unchanged", w: 500, h: 500, wantW: 500, wantH: 500},
		{name: "exactly at limit", w: 1024, h: 768, wantW: 1024, wantH: 768},
		{name: "rounding", w: 3000, h: 1001, wantW: 1024, wantH: 342},
		{name: "extreme ratio floors at one", w: 5000, h: 2, wantW: 1024, wantH: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotW, gotH := ConstrainDimensions(tt.w, tt.h)
			if gotW != tt.wantW || gotH != tt.wantH {
				t.Errorf("Expected %dx%d, got %dx%d", tt.wantW, tt.wantH, gotW, gotH)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		w, h     int
		expected models.Aspect
	}{
		{name: "ratio 1.15 is landscape", w: 115, h: 100, expected: models.AspectLandscape},
		{name: "ratio 0.95 is square", w: 95, h: 100, expected: models.AspectSquare},
		{name: "ratio 0.85 is portrait", w: 85, h: 100, expected: models.AspectPortrait},
		{name: "ratio exactly 1.0 is square", w: 100, h: 100, expected: models.AspectSquare},
		{name: "ratio 1.1 stays in dead zone", w: 110, h: 100, expected: models.AspectSquare},
		{name: "ratio 0.9 stays in dead zone", w: 90, h: 100, expected: models.AspectSquare},
		{name: "clearly landscape", w: 2000, h: 1000, expected: models.AspectLandscape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.w, tt.h)
			if got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestIngestDownscalesAndNormalizes(t *testing.T) {
	img, err := Ingest(encodeTestImage(t, 2000, 1000, "jpeg"))
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	if img.MimeType != OutputMimeType {
		t.Errorf("Expected %s, got %s", OutputMimeType, img.MimeType)
	}
	if img.Aspect != models.AspectLandscape {
		t.Errorf("Expected landscape, got %s", img.Aspect)
	}
	if img.Favorite {
		t.Error("Expected favorite unset on ingested image")
	}
	if img.ID == "" {
		t.Error("Expected a fresh id")
	}

	cfg := decodeResult(t, img)
	if cfg.Width != 1024 || cfg.Height != 512 {
		t.Errorf("Expected 1024x512, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestIngestNeverUpscales(t *testing.T) {
	img, err := Ingest(encodeTestImage(t, 500, 500, "png"))
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	if img.Aspect != models.AspectSquare {
		t.Errorf("Expected square, got %s", img.Aspect)
	}

	cfg := decodeResult(t, img)
	if cfg.Width != 500 || cfg.Height != 500 {
		t.Errorf("Expected 500x500, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestIngestNormalizesPNGToJPEG(t *testing.T) {
	img, err := Ingest(encodeTestImage(t, 300, 400, "png"))
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if img.MimeType != "image/jpeg" {
		t.Errorf("Expected uniform image/jpeg payload, got %s", img.MimeType)
	}
	if img.Aspect != models.AspectPortrait {
		t.Errorf("Expected portrait, got %s", img.Aspect)
	}
}

func TestIngestRejectsMalformedInput(t *testing.T) {
	_, err := Ingest([]byte("definitely not an image"))
	if err == nil {
		t.Fatal("Expected an error for malformed input")
	}
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Errorf("Expected DecodeError, got %T: %v", err, err)
	}
}

func TestIsImageMIME(t *testing.T) {
	tests := []struct {
		mime     string
		expected bool
	}{
		{"image/png", true},
		{"image/jpeg", true},
		{"text/html", false},
		{"application/pdf", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsImageMIME(tt.mime); got != tt.expected {
			t.Errorf("IsImageMIME(%q): expected %v, got %v", tt.mime, tt.expected, got)
		}
	}
}

func TestSubtype(t *testing.T) {
	tests := []struct {
		mime     string
		expected string
	}{
		{"image/jpeg", "jpeg"},
		{"image/png", "png"},
		{"garbage", "bin"},
	}

	for _, tt := range tests {
		if got := Subtype(tt.mime); got != tt.expected {
			t.Errorf("Subtype(%q): expected %q, got %q", tt.mime, tt.expected, got)
		}
	}
}
