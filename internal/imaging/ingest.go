package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/image/draw"

	"github.com/atelier-labs/fitroom/internal/models"
)

// maxEdge is the longest edge allowed on a normalized image. Larger inputs
// are downscaled proportionally; smaller inputs are never upscaled.
const maxEdge = 1024

// outputQuality is the fixed JPEG quality every ingested image is re-encoded
// at, regardless of the source format.
const outputQuality = 90

// OutputMimeType is the uniform payload format produced by Ingest.
const OutputMimeType = "image/jpeg"

// DecodeError reports an input that could not be decoded as a raster image.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unable to decode image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Ingest decodes raw image bytes, constrains them to maxEdge on the longer
// side, re-encodes them as JPEG and classifies the final aspect ratio. The
// returned image carries a fresh id and an unset favorite flag. Ingest has no
// session side effects; the caller decides how to incorporate the result.
func Ingest(data []byte) (*models.NormalizedImage, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		slog.Error("Failed to decode uploaded image", "err", err)
		return nil, &DecodeError{Err: err}
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, &DecodeError{Err: fmt.Errorf("image has empty bounds %dx%d", w, h)}
	}

	scaledW, scaledH := ConstrainDimensions(w, h)
	if scaledW != w || scaledH != h {
		dst := image.NewRGBA(image.Rect(0, 0, scaledW, scaledH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		src = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: outputQuality}); err != nil {
		return nil, fmt.Errorf("failed to re-encode image: %w", err)
	}

	img := &models.NormalizedImage{
		ID:       NewID(),
		Data:     base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType: OutputMimeType,
		Aspect:   Classify(scaledW, scaledH),
	}

	slog.Info("Image ingested",
		"id", img.ID,
		"format", format,
		"width", scaledW,
		"height", scaledH,
		"aspect", img.Aspect,
		"bytes", buf.Len())

	return img, nil
}

// ConstrainDimensions scales w x h proportionally so the longer edge equals
// maxEdge, with standard rounding. Dimensions already within the limit are
// returned unchanged.
func ConstrainDimensions(w, h int) (int, int) {
	longer := w
	if h > longer {
		longer = h
	}
	if longer <= maxEdge {
		return w, h
	}

	scale := float64(maxEdge) / float64(longer)
	sw := int(math.Round(float64(w) * scale))
	sh := int(math.Round(float64(h) * scale))
	if sw < 1 {
		sw = 1
	}
	if sh < 1 {
		sh = 1
	}
	return sw, sh
}

// Classify buckets a width/height pair into an aspect class. Ratios in the
// dead zone [0.9, 1.1] classify as square, which deliberately favors square
// for near-unity ratios.
func Classify(w, h int) models.Aspect {
	ratio := float64(w) / float64(h)
	switch {
	case ratio > 1.1:
		return models.AspectLandscape
	case ratio < 0.9:
		return models.AspectPortrait
	default:
		return models.AspectSquare
	}
}

// NewID mints an image id from the current wall clock at millisecond
// granularity. Ids double as the recency key for history ordering; two ids
// minted within the same millisecond collide on recency, and ordering between
// them is then insertion order.
func NewID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}

// IsImageMIME reports whether a MIME type names a raster image. Drag-and-drop
// entry points filter on this before invoking Ingest.
func IsImageMIME(mime string) bool {
	return strings.HasPrefix(mime, "image/")
}

// Bytes decodes the transport encoding back into raw image bytes, for the
// export boundary.
func Bytes(img models.NormalizedImage) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(img.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image payload: %w", err)
	}
	return data, nil
}

// Subtype extracts the format tag after the slash in a MIME type, used to
// derive download file extensions.
func Subtype(mime string) string {
	if i := strings.Index(mime, "/"); i >= 0 && i+1 < len(mime) {
		return mime[i+1:]
	}
	return "bin"
}
