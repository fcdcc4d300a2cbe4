package gemini

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/atelier-labs/fitroom/internal/generation"
	"github.com/atelier-labs/fitroom/internal/imaging"
	"github.com/atelier-labs/fitroom/internal/models"
)

// DefaultModel is the image-capable Gemini model used when none is
// configured.
const DefaultModel = "gemini-2.5-flash-image-preview"

// Gemini implements the generation collaborator using Google Gemini.
type Gemini struct {
	model string
}

// New returns a Gemini generator using the given model name, or DefaultModel
// when empty.
func New(model string) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{model: model}
}

// Generate sends the model photo, garment photo and instructions to Gemini
// and returns the first image part of the response.
func (g *Gemini) Generate(ctx context.Context, modelImg, garmentImg models.NormalizedImage, instructions string) (*generation.Result, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create new gemini client: %w", err)
	}
	defer client.Close()

	modelBytes, err := imaging.Bytes(modelImg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode model image: %w", err)
	}
	garmentBytes, err := imaging.Bytes(garmentImg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode garment image: %w", err)
	}

	gm := client.GenerativeModel(g.model)

	resp, err := gm.GenerateContent(ctx,
		genai.ImageData(imaging.Subtype(modelImg.MimeType), modelBytes),
		genai.ImageData(imaging.Subtype(garmentImg.MimeType), garmentBytes),
		genai.Text(buildPrompt(modelImg.Aspect, instructions)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, fmt.Errorf("empty content returned from Gemini")
	}

	// An image generation refusal arrives as text parts only; surface that
	// text as the error message.
	var refusal []string
	for _, part := range candidate.Content.Parts {
		switch p := part.(type) {
		case genai.Blob:
			return &generation.Result{Data: p.Data, MimeType: p.MIMEType}, nil
		case genai.Text:
			refusal = append(refusal, string(p))
		}
	}

	if len(refusal) > 0 {
		return nil, fmt.Errorf("%s", strings.TrimSpace(strings.Join(refusal, " ")))
	}
	return nil, fmt.Errorf("no image returned from Gemini")
}

// buildPrompt composes the try-on instruction, framing the request with the
// model photo's aspect class and appending any user instructions.
func buildPrompt(aspect models.Aspect, instructions string) string {
	var b strings.Builder
	b.WriteString("You are given two photographs. The first shows a person (the model), the second shows a garment.\n")
	b.WriteString("Generate a single photorealistic image of the same person wearing the garment.\n")
	b.WriteString("Preserve the model's pose, face, body proportions and the original background.\n")
	b.WriteString("Match the garment's color, pattern, fabric texture and fit faithfully.\n")
	b.WriteString(fmt.Sprintf("The source photo is framed %s; compose the result as a portrait full-body shot.\n", aspect))
	if strings.TrimSpace(instructions) != "" {
		b.WriteString("Additional styling instructions: ")
		b.WriteString(strings.TrimSpace(instructions))
		b.WriteString("\n")
	}
	b.WriteString("Return only the generated image.")
	return b.String()
}
