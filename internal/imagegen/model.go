// Package imagegen holds the clients for the hosted generative-image APIs.
// The editing core treats them as one opaque operation: given a source
// image, auxiliary images, and an instruction, return an edited image.
// Retries, rate limits, and model selection live here, never in the core.
package imagegen

import (
	"context"
	"os"
)

// Gemini model IDs.
const (
	// ModelGeminiImage is the multimodal image generation/editing model.
	ModelGeminiImage = "gemini-3-pro-image-preview"

	// ModelGeminiText is used for analysis calls (placement suggestion,
	// key validation) where no image output is needed.
	ModelGeminiText = "gemini-3-flash-preview"
)

// GetImageModel returns the Gemini image model to use, resolved from the
// YARDSTAGE_MODEL environment variable with ModelGeminiImage as default.
func GetImageModel() string {
	if env := os.Getenv("YARDSTAGE_MODEL"); env != "" {
		return env
	}
	return ModelGeminiImage
}

// ReferenceImage is an auxiliary image attached to an edit request: the
// exported mask, a product reference photo, or both.
type ReferenceImage struct {
	Data []byte
	MIME string
}

// Request is the provider-agnostic edit request.
type Request struct {
	Source     []byte
	SourceMIME string
	// Mask is an optional black/white PNG; white marks the editable
	// region. Providers that take masks natively use it directly, others
	// receive it as an attached reference image.
	Mask []byte
	// References are additional context images (product renders).
	References []ReferenceImage
	// Instruction is the composed natural-language edit instruction.
	Instruction string
	// System is an optional system-level instruction.
	System string
}

// Result holds an edited image returned by a provider.
type Result struct {
	// ImageData is the raw bytes of the edited image (JPEG/PNG).
	ImageData []byte
	// MIMEType is the MIME type of the output image.
	MIMEType string
	// Text is any description returned alongside the image.
	Text string
}

// Client is the single operation the rest of the system depends on.
type Client interface {
	// Edit applies the request's instruction to its source image and
	// returns the edited image.
	Edit(ctx context.Context, req Request) (*Result, error)
}
