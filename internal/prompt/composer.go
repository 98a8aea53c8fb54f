// Package prompt composes the natural-language instructions sent to the
// generative-image providers. Templates are stored as text files under
// prompts/ and embedded at compile time; composition is pure string work so
// the editing core stays provider-agnostic.
package prompt

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"

	"github.com/tmercier/yardstage/internal/editor"
)

// ProductKind identifies which product line is being staged.
type ProductKind string

const (
	ProductTinyHome ProductKind = "tiny-home"
	ProductPool     ProductKind = "pool"
)

// Lighting time-of-day options offered by the UI. Free-form values are also
// accepted; these are the ones with dedicated controls.
const (
	LightingMorning    = "early morning"
	LightingMidday     = "bright midday"
	LightingGoldenHour = "golden hour"
	LightingDusk       = "dusk"
)

// --- Static prompts ---

// StagingSystemPrompt is the system instruction for all staging edits.
//
//go:embed prompts/staging-system.txt
var StagingSystemPrompt string

// PlacementAnalysisPrompt instructs the text model to suggest a placement
// region as JSON.
//
//go:embed prompts/placement-analysis.txt
var PlacementAnalysisPrompt string

// --- Dynamic templates ---

//go:embed prompts/place-product.txt
var placeProductTemplate string

//go:embed prompts/masked-edit.txt
var maskedEditTemplate string

//go:embed prompts/region-zoom.txt
var regionZoomTemplate string

// Pre-parsed templates. template.Must panics on malformed templates,
// catching errors at program startup rather than at call time.
var (
	placeProductTmpl = template.Must(template.New("place").Parse(placeProductTemplate))
	maskedEditTmpl   = template.Must(template.New("masked").Parse(maskedEditTemplate))
	regionZoomTmpl   = template.Must(template.New("zoom").Parse(regionZoomTemplate))
)

// StagingParams are the semantic parameters a placement request carries.
type StagingParams struct {
	Product        ProductKind
	ProductModel   string // e.g. "Cedar 24ft", empty for generic
	Lighting       string // time-of-day description, empty to keep as-shot
	ScaleReference string // e.g. "the front door", empty for model judgement
	Placement      string // e.g. "left of the oak tree"
	Instruction    string // freeform extra instruction
}

// productLabel returns the human wording for a product kind.
func productLabel(k ProductKind) string {
	switch k {
	case ProductPool:
		return "swimming pool"
	default:
		return "tiny home"
	}
}

// RenderPlacement renders the instruction for staging a product into the
// photo.
func RenderPlacement(p StagingParams) string {
	data := struct {
		ProductLabel   string
		ProductModel   string
		Lighting       string
		ScaleReference string
		Placement      string
		Instruction    string
	}{
		ProductLabel:   productLabel(p.Product),
		ProductModel:   p.ProductModel,
		Lighting:       p.Lighting,
		ScaleReference: p.ScaleReference,
		Placement:      p.Placement,
		Instruction:    p.Instruction,
	}
	return render(placeProductTmpl, data)
}

// RenderMaskedEdit renders the instruction for an edit constrained to the
// white region of an attached mask.
func RenderMaskedEdit(instruction string) string {
	return render(maskedEditTmpl, struct{ Instruction string }{Instruction: instruction})
}

// RenderRegionZoom renders the crop/zoom instruction for a normalized
// region. The top,left,bottom,right ordering in the rendered text is part of
// the remote model's region contract.
func RenderRegionZoom(r editor.NormalizedRegion) string {
	return render(regionZoomTmpl, r)
}

func render(tmpl *template.Template, data any) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		// Templates are embedded and parsed at startup; execution over
		// plain structs cannot fail in practice.
		return ""
	}
	return strings.TrimSpace(buf.String())
}
