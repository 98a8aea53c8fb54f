package editor

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
)

// Rasterizer is the minimal surface the mask-rebuild algorithm needs: fill a
// background, stroke a polyline with round caps and joins at per-point brush
// sizes, and encode the result. Keeping this behind an interface means the
// mask logic has no opinion about the raster backend.
type Rasterizer interface {
	// DrawBackground fills the whole raster with c.
	DrawBackground(c color.Color)
	// StrokePath draws one connected path through points, using each
	// point's recorded brush diameter. A single-point path degenerates to
	// a circular dab.
	StrokePath(points []Point, c color.Color)
	// Encode returns the raster as encoded bytes.
	Encode() ([]byte, error)
}

// NewMaskRaster returns a Rasterizer producing a grayscale PNG of the given
// pixel dimensions. Grayscale keeps the output strictly binary for the
// black/white mask contract the remote editing APIs expect: pixels are either
// 0 or 255, with no anti-aliased blending between them.
func NewMaskRaster(width, height int) (Rasterizer, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("invalid raster dimensions %dx%d", width, height)
	}
	return &maskRaster{img: image.NewGray(image.Rect(0, 0, width, height))}, nil
}

type maskRaster struct {
	img *image.Gray
}

func (r *maskRaster) DrawBackground(c color.Color) {
	g := color.GrayModel.Convert(c).(color.Gray)
	for i := range r.img.Pix {
		r.img.Pix[i] = g.Y
	}
}

func (r *maskRaster) StrokePath(points []Point, c color.Color) {
	if len(points) == 0 {
		return
	}
	g := color.GrayModel.Convert(c).(color.Gray)
	if len(points) == 1 {
		r.stampDisc(points[0].X, points[0].Y, points[0].Size/2, g.Y)
		return
	}
	for i := 0; i < len(points)-1; i++ {
		r.stampSegment(points[i], points[i+1], g.Y)
	}
}

// stampSegment draws a round-capped segment by stamping discs along it at
// sub-pixel steps, interpolating the brush diameter between the endpoints.
// Disc stamping gives round joins for free where segments meet.
func (r *maskRaster) stampSegment(a, b Point, v uint8) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	dist := math.Hypot(dx, dy)
	steps := int(dist*2) + 1
	for s := 0; s <= steps; s++ {
		t := float64(s) / float64(steps)
		size := a.Size + (b.Size-a.Size)*t
		r.stampDisc(a.X+dx*t, a.Y+dy*t, size/2, v)
	}
}

func (r *maskRaster) stampDisc(cx, cy, radius float64, v uint8) {
	if radius <= 0 {
		radius = 0.5
	}
	b := r.img.Bounds()
	x0 := int(math.Floor(cx - radius))
	x1 := int(math.Ceil(cx + radius))
	y0 := int(math.Floor(cy - radius))
	y1 := int(math.Ceil(cy + radius))
	if x0 < b.Min.X {
		x0 = b.Min.X
	}
	if y0 < b.Min.Y {
		y0 = b.Min.Y
	}
	if x1 > b.Max.X-1 {
		x1 = b.Max.X - 1
	}
	if y1 > b.Max.Y-1 {
		y1 = b.Max.Y - 1
	}
	r2 := radius * radius
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			// Pixel centers, so a diameter-N dab spans N pixels.
			ddx := float64(x) + 0.5 - cx
			ddy := float64(y) + 0.5 - cy
			if ddx*ddx+ddy*ddy <= r2 {
				r.img.Pix[(y-b.Min.Y)*r.img.Stride+(x-b.Min.X)] = v
			}
		}
	}
}

func (r *maskRaster) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, r.img); err != nil {
		return nil, fmt.Errorf("failed to encode mask: %w", err)
	}
	return buf.Bytes(), nil
}
