package generation

import (
	"context"

	"github.com/atelier-labs/fitroom/internal/models"
)

// Result is the collaborator's generated image payload.
type Result struct {
	Data     []byte
	MimeType string
}

// Generator is the external image generation collaborator: a model photo and
// a garment photo plus optional free-text instructions in, one encoded image
// out. Failures of any kind (transport, quota, content policy) carry only a
// human-readable message; callers must treat them uniformly.
type Generator interface {
	Generate(ctx context.Context, model, garment models.NormalizedImage, instructions string) (*Result, error)
}
