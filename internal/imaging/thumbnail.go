package imaging

import (
	"bytes"
	"fmt"
	"image"

	"github.com/chai2010/webp"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
)

// DefaultThumbnailMaxDimension caps the longest edge of browser thumbnails.
const DefaultThumbnailMaxDimension = 1024

// Thumbnail downscales an image payload so its longest edge fits
// maxDimension and encodes it as WebP for the browser. Images already small
// enough are re-encoded without resizing, keeping the output format uniform.
func Thumbnail(data []byte, maxDimension int) ([]byte, string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	origW, origH := bounds.Dx(), bounds.Dy()
	newW, newH := fitDimensions(origW, origH, maxDimension)

	if newW != origW || newH != origH {
		resized := image.NewRGBA(image.Rect(0, 0, newW, newH))
		draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
		img = resized
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: 80}); err != nil {
		return nil, "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	log.Debug().
		Int("orig_width", origW).
		Int("orig_height", origH).
		Int("new_width", newW).
		Int("new_height", newH).
		Int("output_size", buf.Len()).
		Msg("Thumbnail generated")

	return buf.Bytes(), "image/webp", nil
}

// fitDimensions shrinks (never grows) a width/height pair so the longest
// edge is at most maxDimension, preserving aspect ratio.
func fitDimensions(width, height, maxDimension int) (int, int) {
	if width <= maxDimension && height <= maxDimension {
		return width, height
	}
	if width > height {
		return maxDimension, int(float64(height) * float64(maxDimension) / float64(width))
	}
	return int(float64(width) * float64(maxDimension) / float64(height)), maxDimension
}
