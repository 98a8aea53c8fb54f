// Package imaging holds raster utilities around the editing workflow:
// format sniffing, dimension probing, HEIC conversion, thumbnails, and
// watermark compositing. The editing core never imports this package; it is
// glue between uploads, providers, and the browser.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"net/http"

	// Register the raster formats uploads arrive in.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// DetectMIME sniffs the MIME type from the payload's magic bytes.
func DetectMIME(data []byte) string {
	return http.DetectContentType(data)
}

// DecodeBounds probes an image's natural pixel dimensions without decoding
// the full raster.
func DecodeBounds(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image header: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// IsSupportedUpload reports whether the sniffed MIME type is a source photo
// format the editor accepts directly. HEIC payloads are converted first.
func IsSupportedUpload(mime string) bool {
	switch mime {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}
