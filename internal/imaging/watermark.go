package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Watermark stamps a text label into the bottom-right corner of an image
// payload, with a dark backing box so the label stays readable on any
// background. The output keeps the input's format (PNG stays PNG, anything
// else becomes JPEG). An empty label returns the payload unchanged.
func Watermark(data []byte, label string) ([]byte, string, error) {
	if label == "" {
		return data, DetectMIME(data), nil
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)

	face := basicfont.Face7x13
	d := &font.Drawer{Dst: dst, Src: image.White, Face: face}
	textW := d.MeasureString(label).Ceil()

	const pad = 6
	boxW := textW + 2*pad
	boxH := face.Height + 2*pad
	boxX := bounds.Max.X - boxW - pad
	boxY := bounds.Max.Y - boxH - pad
	if boxX < bounds.Min.X {
		boxX = bounds.Min.X
	}
	if boxY < bounds.Min.Y {
		boxY = bounds.Min.Y
	}

	backing := image.NewUniform(color.NRGBA{R: 0, G: 0, B: 0, A: 160})
	draw.Draw(dst, image.Rect(boxX, boxY, boxX+boxW, boxY+boxH), backing, image.Point{}, draw.Over)

	d.Dot = fixed.P(boxX+pad, boxY+pad+face.Ascent)
	d.DrawString(label)

	var buf bytes.Buffer
	outMIME := "image/jpeg"
	if format == "png" {
		outMIME = "image/png"
		err = png.Encode(&buf, dst)
	} else {
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 92})
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode watermarked image: %w", err)
	}
	return buf.Bytes(), outMIME, nil
}
