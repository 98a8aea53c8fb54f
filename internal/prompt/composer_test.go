package prompt

import (
	"strings"
	"testing"

	"github.com/tmercier/yardstage/internal/editor"
)

func TestRenderPlacementFull(t *testing.T) {
	got := RenderPlacement(StagingParams{
		Product:        ProductPool,
		ProductModel:   "Lagoon 8m",
		Lighting:       LightingGoldenHour,
		ScaleReference: "the garden shed",
		Placement:      "centered in the back lawn",
		Instruction:    "keep the flower beds visible",
	})

	for _, want := range []string{
		"swimming pool",
		"Lagoon 8m",
		"golden hour",
		"the garden shed",
		"centered in the back lawn",
		"keep the flower beds visible",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("placement prompt missing %q:\n%s", want, got)
		}
	}
}

func TestRenderPlacementOmitsEmptyParams(t *testing.T) {
	got := RenderPlacement(StagingParams{Product: ProductTinyHome})

	if !strings.Contains(got, "tiny home") {
		t.Errorf("prompt missing product label:\n%s", got)
	}
	for _, banned := range []string{"Placement:", "scale reference", "Additional instruction:", "lighting,"} {
		if strings.Contains(got, banned) {
			t.Errorf("prompt must omit %q when the parameter is empty:\n%s", banned, got)
		}
	}
}

func TestRenderMaskedEdit(t *testing.T) {
	got := RenderMaskedEdit("replace the patio with grass")
	if !strings.Contains(got, "replace the patio with grass") {
		t.Errorf("masked-edit prompt missing instruction:\n%s", got)
	}
	if !strings.Contains(got, "White pixels") {
		t.Errorf("masked-edit prompt must state the mask convention:\n%s", got)
	}
}

func TestRenderRegionZoomOrdering(t *testing.T) {
	got := RenderRegionZoom(editor.NormalizedRegion{Top: 120, Left: 40, Bottom: 900, Right: 660})
	// The remote contract expects top, left, bottom, right, in this order.
	want := "[top=120, left=40, bottom=900, right=660]"
	if !strings.Contains(got, want) {
		t.Errorf("zoom prompt missing %q:\n%s", want, got)
	}
}

func TestStaticPromptsEmbedded(t *testing.T) {
	if strings.TrimSpace(StagingSystemPrompt) == "" {
		t.Error("staging system prompt is empty")
	}
	if !strings.Contains(PlacementAnalysisPrompt, "JSON") {
		t.Error("placement analysis prompt must demand JSON output")
	}
}
