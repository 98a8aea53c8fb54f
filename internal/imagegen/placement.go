package imagegen

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/tmercier/yardstage/internal/editor"
	"github.com/tmercier/yardstage/internal/jsonutil"
	"github.com/tmercier/yardstage/internal/prompt"
)

// PlacementSuggestion is the text model's proposed staging area for a
// product, in the normalized [0,1000] region space.
type PlacementSuggestion struct {
	Top    int    `json:"top"`
	Left   int    `json:"left"`
	Bottom int    `json:"bottom"`
	Right  int    `json:"right"`
	Reason string `json:"reason"`
}

// Region converts the suggestion to the editor's region type.
func (p PlacementSuggestion) Region() editor.NormalizedRegion {
	return editor.NormalizedRegion{Top: p.Top, Left: p.Left, Bottom: p.Bottom, Right: p.Right}
}

// Valid reports whether the suggestion is a well-formed box in [0,1000].
func (p PlacementSuggestion) Valid() bool {
	inRange := func(v int) bool { return v >= 0 && v <= editor.NormalizedScale }
	return inRange(p.Top) && inRange(p.Left) && inRange(p.Bottom) && inRange(p.Right) &&
		p.Top < p.Bottom && p.Left < p.Right
}

// SuggestPlacement asks the text model where the product would best sit in
// the photo and parses the JSON answer. Failures here never block the user;
// the caller falls back to manual region selection.
func SuggestPlacement(ctx context.Context, client *genai.Client, imageData []byte, imageMIME string) (*PlacementSuggestion, error) {
	log.Debug().
		Int("image_bytes", len(imageData)).
		Msg("Requesting placement suggestion")

	parts := []*genai.Part{
		genai.NewPartFromBytes(imageData, imageMIME),
		genai.NewPartFromText(prompt.PlacementAnalysisPrompt),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := client.Models.GenerateContent(ctx, ModelGeminiText, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("placement analysis failed: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("placement analysis returned no text")
	}

	suggestion, err := jsonutil.ParseJSON[PlacementSuggestion](text)
	if err != nil {
		log.Error().Err(err).Str("response", truncate(text, 300)).Msg("Failed to parse placement suggestion")
		return nil, fmt.Errorf("placement suggestion: %w", err)
	}
	if !suggestion.Valid() {
		return nil, fmt.Errorf("placement suggestion out of range: %+v", suggestion)
	}

	log.Info().
		Int("top", suggestion.Top).
		Int("left", suggestion.Left).
		Int("bottom", suggestion.Bottom).
		Int("right", suggestion.Right).
		Msg("Placement suggestion received")

	return &suggestion, nil
}
