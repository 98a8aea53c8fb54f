package editor

import "math"

// MinSelectionPx is the minimum committed selection size, in CSS pixels of
// the displayed image. Drags smaller than this on either axis are treated as
// "no selection", not as errors.
const MinSelectionPx = 20

// NormalizedScale is the fixed-point coordinate space the remote model's
// region-of-interest contract expects: integers in [0, 1000] per axis.
const NormalizedScale = 1000

// SelectionRect is a transient rectangle in on-screen CSS pixels relative to
// the displayed image element's top-left.
type SelectionRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NormalizedRegion is a resolution-independent bounding box with each edge
// an integer in [0, 1000]. The field order — top, left, bottom, right — is
// the exact order the remote region-aware edit instruction expects.
type NormalizedRegion struct {
	Top    int `json:"top"`
	Left   int `json:"left"`
	Bottom int `json:"bottom"`
	Right  int `json:"right"`
}

// RegionSelector turns a rectangular drag over the displayed (possibly
// scaled-down) image into a selection locked to the image's natural aspect
// ratio, clamped into the element bounds, and convertible to a
// NormalizedRegion for the remote crop instruction.
type RegionSelector struct {
	element Size // displayed element bounds, CSS pixels
	natural Size // image natural pixel dimensions

	anchorX, anchorY float64
	dragging         bool

	committed SelectionRect
	hasRect   bool
}

// NewRegionSelector creates a selector for an image of the given natural
// size displayed inside the given element bounds.
func NewRegionSelector(element, natural Size) *RegionSelector {
	return &RegionSelector{element: element, natural: natural}
}

// Begin records the drag anchor, in CSS pixels relative to the element.
func (r *RegionSelector) Begin(x, y float64) {
	r.anchorX, r.anchorY = x, y
	r.dragging = true
	r.hasRect = false
}

// Update resolves the in-progress rectangle for the current drag position.
// Returns (rect, true) when the drag produces a valid selection, or
// (zero, false) when it is below the minimum size or cannot satisfy the
// aspect constraint.
func (r *RegionSelector) Update(x, y float64) (SelectionRect, bool) {
	if !r.dragging {
		return SelectionRect{}, false
	}
	return resolveRect(r.anchorX, r.anchorY, x, y, r.element, r.natural)
}

// End commits the rectangle for the final drag position. An invalid drag
// leaves the selector with no selection.
func (r *RegionSelector) End(x, y float64) (SelectionRect, bool) {
	if !r.dragging {
		return SelectionRect{}, false
	}
	r.dragging = false
	rect, ok := resolveRect(r.anchorX, r.anchorY, x, y, r.element, r.natural)
	if !ok {
		r.hasRect = false
		return SelectionRect{}, false
	}
	r.committed = rect
	r.hasRect = true
	return rect, true
}

// Cancel discards any in-progress or committed selection. No side effects
// beyond that.
func (r *RegionSelector) Cancel() {
	r.dragging = false
	r.hasRect = false
}

// Committed returns the committed selection, if any.
func (r *RegionSelector) Committed() (SelectionRect, bool) {
	return r.committed, r.hasRect
}

// Normalized maps the committed selection into the [0,1000] space. Called
// once at submission time; callers clear the selection after a successful
// submission.
func (r *RegionSelector) Normalized() (NormalizedRegion, bool) {
	if !r.hasRect {
		return NormalizedRegion{}, false
	}
	return ToNormalized(r.committed, r.element), true
}

// resolveRect applies the selection pipeline: minimum size, aspect lock to
// the natural ratio, drag-direction anchoring, and bounds clamping. Any
// stage that cannot be satisfied yields no selection.
func resolveRect(ax, ay, x, y float64, element, natural Size) (SelectionRect, bool) {
	if !element.Valid() || !natural.Valid() {
		return SelectionRect{}, false
	}
	w := math.Abs(x - ax)
	h := math.Abs(y - ay)
	if w < MinSelectionPx || h < MinSelectionPx {
		return SelectionRect{}, false
	}

	// Force the image's natural aspect ratio by shrinking the long side,
	// so the exported crop composites back into a fixed-ratio frame.
	ratio := natural.Width / natural.Height
	if w/h > ratio {
		w = h * ratio
	} else {
		h = w / ratio
	}

	// A drag can exceed the element after the ratio lock only when the
	// element shows a letterboxed image; shrink and re-lock.
	if w > element.Width {
		w = element.Width
		h = w / ratio
	}
	if h > element.Height {
		h = element.Height
		w = h * ratio
	}
	if w < MinSelectionPx || h < MinSelectionPx {
		return SelectionRect{}, false
	}

	// Anchor at the corner consistent with drag direction.
	rx := ax
	if x < ax {
		rx = ax - w
	}
	ry := ay
	if y < ay {
		ry = ay - h
	}

	// Clamp into element bounds.
	if rx < 0 {
		rx = 0
	}
	if rx+w > element.Width {
		rx = element.Width - w
	}
	if ry < 0 {
		ry = 0
	}
	if ry+h > element.Height {
		ry = element.Height - h
	}

	return SelectionRect{X: rx, Y: ry, Width: w, Height: h}, true
}

// ToNormalized linearly maps a selection rectangle onto the [0,1000] integer
// space relative to the element bounds. A selection made against a 400px
// thumbnail and the same relative selection against a 4000px image produce
// the same region.
func ToNormalized(rect SelectionRect, element Size) NormalizedRegion {
	return NormalizedRegion{
		Top:    normClamp(rect.Y / element.Height),
		Left:   normClamp(rect.X / element.Width),
		Bottom: normClamp((rect.Y + rect.Height) / element.Height),
		Right:  normClamp((rect.X + rect.Width) / element.Width),
	}
}

func normClamp(v float64) int {
	n := int(math.Round(v * NormalizedScale))
	if n < 0 {
		return 0
	}
	if n > NormalizedScale {
		return NormalizedScale
	}
	return n
}
