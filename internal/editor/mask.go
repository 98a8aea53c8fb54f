package editor

import (
	"image/color"
	"math"

	"github.com/rs/zerolog/log"
)

// DefaultBrushSize is the brush diameter, in displayed CSS pixels, used
// until the user picks another.
const DefaultBrushSize = 30

// MaskSession captures freehand brush strokes over a displayed image and
// exports a black/white mask aligned to the image's native pixel grid.
//
// Strokes are the source of truth: the mask is never edited in place, it is
// rebuilt in full from the stroke log on every export. That is why each
// point carries its own brush size — replays stay historically accurate even
// when the size changed mid-session.
//
// All operations degrade to no-ops (never errors) while no image geometry is
// attached or while the processing flag is set; those states come from UI
// lifecycle races the session must tolerate.
type MaskSession struct {
	displayed Size
	natural   Size

	brushSize float64
	disabled  bool

	strokes []Stroke
	active  Stroke
	drawing bool

	mask []byte // current exported mask, refreshed by every mutating call
}

// NewMaskSession returns an empty session with the default brush size.
// Geometry must be attached before strokes are accepted.
func NewMaskSession() *MaskSession {
	return &MaskSession{brushSize: DefaultBrushSize}
}

// Attach binds the session to the image's displayed and natural dimensions.
// Until both are known, every stroke operation is a no-op.
func (s *MaskSession) Attach(displayed, natural Size) {
	if !displayed.Valid() || !natural.Valid() {
		return
	}
	s.displayed = displayed
	s.natural = natural
}

// Attached reports whether image geometry is known.
func (s *MaskSession) Attached() bool {
	return s.displayed.Valid() && s.natural.Valid()
}

// SetProcessing toggles the disabled flag. While set (a generation request
// is in flight) all stroke input is ignored.
func (s *MaskSession) SetProcessing(v bool) {
	s.disabled = v
}

// SetBrushSize changes the brush diameter, in displayed CSS pixels, for
// subsequently recorded points. Points already recorded keep their size.
func (s *MaskSession) SetBrushSize(px float64) {
	if px > 0 {
		s.brushSize = px
	}
}

// BeginStroke starts a new stroke at a screen-space point with the given
// brush diameter. No-op while disabled or unattached.
func (s *MaskSession) BeginStroke(screenX, screenY, brushSize float64) {
	if s.disabled || !s.Attached() {
		return
	}
	if brushSize > 0 {
		s.brushSize = brushSize
	}
	s.drawing = true
	s.active = Stroke{s.toImagePoint(screenX, screenY)}
}

// ExtendStroke appends a screen-space point to the active stroke, carrying
// the session's current brush size. No-op unless a stroke is being drawn.
func (s *MaskSession) ExtendStroke(screenX, screenY float64) {
	if s.disabled || !s.drawing {
		return
	}
	s.active = append(s.active, s.toImagePoint(screenX, screenY))
}

// EndStroke seals the active stroke into the stroke log and refreshes the
// mask. Pointer-leave is treated identically to pointer-up: the stroke is
// sealed, not discarded.
func (s *MaskSession) EndStroke() {
	if !s.drawing {
		return
	}
	s.drawing = false
	if len(s.active) > 0 {
		s.strokes = append(s.strokes, s.active)
	}
	s.active = nil
	if _, err := s.ExportMask(); err != nil {
		log.Warn().Err(err).Msg("Mask export after stroke failed")
	}
}

// Clear empties the stroke log and immediately re-exports, so the current
// mask reflects the cleared (all-black) state. Callers never need a dirty
// flag: the mask is current after any mutating call.
func (s *MaskSession) Clear() {
	s.strokes = nil
	s.active = nil
	s.drawing = false
	if !s.Attached() {
		return
	}
	if _, err := s.ExportMask(); err != nil {
		log.Warn().Err(err).Msg("Mask export after clear failed")
	}
}

// ExportMask rebuilds the mask from the stroke log: black background, every
// stroke drawn as one connected white path at its recorded per-point brush
// sizes. The raster matches the source image's native pixel dimensions.
// Exporting twice without new strokes yields byte-identical output.
//
// Returns (nil, nil) while no geometry is attached.
func (s *MaskSession) ExportMask() ([]byte, error) {
	if !s.Attached() {
		return nil, nil
	}
	ras, err := NewMaskRaster(int(math.Round(s.natural.Width)), int(math.Round(s.natural.Height)))
	if err != nil {
		return nil, err
	}
	ras.DrawBackground(color.Black)
	for _, stroke := range s.strokes {
		ras.StrokePath(stroke, color.White)
	}
	data, err := ras.Encode()
	if err != nil {
		return nil, err
	}
	s.mask = data
	return data, nil
}

// CurrentMask returns the most recently exported mask, or nil if no export
// has happened yet.
func (s *MaskSession) CurrentMask() []byte {
	return s.mask
}

// Drawing reports whether a stroke is currently in progress.
func (s *MaskSession) Drawing() bool {
	return s.drawing
}

// StrokeCount returns the number of sealed strokes.
func (s *MaskSession) StrokeCount() int {
	return len(s.strokes)
}

// HasMask reports whether at least one stroke has been sealed, which is what
// the UI needs to know to enable a masked-edit submission.
func (s *MaskSession) HasMask() bool {
	return len(s.strokes) > 0
}

// toImagePoint converts a screen point and scales the current brush size
// into image pixels alongside it, so a 30px brush stays 30 displayed pixels
// wide whatever the image's backing resolution.
func (s *MaskSession) toImagePoint(screenX, screenY float64) Point {
	x, y := ToImageSpace(screenX, screenY, s.displayed, s.natural)
	return Point{X: x, Y: y, Size: s.brushSize * s.natural.Width / s.displayed.Width}
}
