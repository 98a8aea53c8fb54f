package imagegen

// stability.go is a REST client for the Stability AI diffusion endpoints,
// the alternative image-to-image provider. Requests are multipart form
// uploads; the response body is the raw edited image.

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

const stabilityBaseURL = "https://api.stability.ai/v2beta/stable-image"

// StabilityClient calls the Stability diffusion API for staging edits.
type StabilityClient struct {
	apiKey     string
	httpClient *http.Client

	// Strength controls how far image-to-image generation may deviate
	// from the source (0 keeps it, 1 ignores it).
	Strength float64
}

// NewStabilityClient creates a client with the default deviation strength.
func NewStabilityClient(apiKey string) *StabilityClient {
	return &StabilityClient{
		apiKey:   apiKey,
		Strength: 0.65,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Name identifies the provider in logs and job records.
func (c *StabilityClient) Name() string { return "stability" }

// Edit routes masked requests to the inpaint endpoint and unmasked requests
// to image-to-image generation. Reference images are not supported by the
// diffusion endpoints, so product details ride in the instruction text only.
func (c *StabilityClient) Edit(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	endpoint := stabilityBaseURL + "/generate/sd3"
	fields := map[string]string{
		"prompt":        req.Instruction,
		"mode":          "image-to-image",
		"strength":      strconv.FormatFloat(c.Strength, 'f', 2, 64),
		"output_format": "png",
	}
	files := map[string]filePart{
		"image": {name: "source.png", mime: req.SourceMIME, data: req.Source},
	}
	if req.Mask != nil {
		endpoint = stabilityBaseURL + "/edit/inpaint"
		fields = map[string]string{
			"prompt":        req.Instruction,
			"output_format": "png",
		}
		files["mask"] = filePart{name: "mask.png", mime: "image/png", data: req.Mask}
	}

	log.Info().
		Str("endpoint", endpoint).
		Int("image_bytes", len(req.Source)).
		Bool("has_mask", req.Mask != nil).
		Msg("Sending image to Stability for editing")

	body, contentType, err := encodeMultipart(fields, files)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Accept", "image/*")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		recordEditMetrics(c.Name(), "http_error", start)
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		recordEditMetrics(c.Name(), fmt.Sprintf("status_%d", resp.StatusCode), start)
		log.Error().
			Int("status", resp.StatusCode).
			Str("body", truncate(string(respBody), 500)).
			Msg("Stability API returned error")
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/png"
	}

	recordEditMetrics(c.Name(), "success", start)
	log.Info().
		Int("output_bytes", len(respBody)).
		Str("output_mime", mimeType).
		Dur("duration", time.Since(start)).
		Msg("Stability image editing complete")

	return &Result{ImageData: respBody, MIMEType: mimeType}, nil
}

type filePart struct {
	name string
	mime string
	data []byte
}

func encodeMultipart(fields map[string]string, files map[string]filePart) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for key, value := range fields {
		if err := w.WriteField(key, value); err != nil {
			return nil, "", err
		}
	}
	for key, f := range files {
		part, err := w.CreateFormFile(key, f.name)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
