// Package editor implements the framework-free editing core of YardStage:
// freehand mask capture, linear undo/redo history, and screen-to-normalized
// region selection. Nothing in this package touches the network or the DOM;
// the web layer feeds it pointer geometry and consumes its artifacts.
package editor

// Point is a single sample of a brush stroke, in source-image pixel
// coordinates. Size is the brush diameter (image pixels) at the moment the
// point was recorded, so a brush-size change mid-stroke replays faithfully
// when the mask is rebuilt.
type Point struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`
}

// Stroke is one continuous pointer drag, in chronological point order.
type Stroke []Point

// Size holds a width/height pair. Used both for an image's natural pixel
// dimensions and for the on-screen (CSS pixel) dimensions of the element
// displaying it.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// ToImageSpace converts an on-screen point (CSS pixels, relative to the
// displayed element's top-left) into the image's native pixel space using
// the ratio of natural size to displayed size. The displayed element may be
// scaled responsively, so the two axes carry independent scale factors.
//
// Returns the input unchanged if either size is not yet known; callers guard
// that case themselves (mask capture is a no-op before the image loads).
func ToImageSpace(screenX, screenY float64, displayed, natural Size) (float64, float64) {
	if !displayed.Valid() || !natural.Valid() {
		return screenX, screenY
	}
	return screenX * natural.Width / displayed.Width,
		screenY * natural.Height / displayed.Height
}
