package imagegen

// gemini.go is a REST client for Gemini image editing. Direct HTTP is used
// instead of the Go SDK because the SDK release we depend on does not expose
// image output modalities.

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tmercier/yardstage/internal/metrics"
)

// geminiBaseURL is the Gemini REST API base URL.
const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient calls the Gemini image model via REST for staging edits.
type GeminiClient struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewGeminiClient creates a client for the given image model. An empty model
// selects the default resolved by GetImageModel.
func NewGeminiClient(apiKey, model string) *GeminiClient {
	if model == "" {
		model = GetImageModel()
	}
	return &GeminiClient{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // image generation can take 10-30s
		},
	}
}

// Name identifies the provider in logs and job records.
func (c *GeminiClient) Name() string { return "gemini" }

// --- REST request/response types ---

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *geminiBlobData `json:"inlineData,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type geminiBlobData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"` // base64 encoded
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
	Error      *geminiError      `json:"error,omitempty"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Edit sends the source photo, any mask and reference images, and the
// instruction to the image model, and returns the edited image.
//
// Part ordering matters to the model: source first, then the mask (the
// masked-edit instruction calls it "the mask image attached after the
// photo"), then product references, then the instruction text.
func (c *GeminiClient) Edit(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	log.Info().
		Str("model", c.model).
		Int("image_bytes", len(req.Source)).
		Bool("has_mask", req.Mask != nil).
		Int("references", len(req.References)).
		Msg("Sending image to Gemini for editing")

	body, err := json.Marshal(c.buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", geminiBaseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

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
			Msg("Gemini image editing API returned error")
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if geminiResp.Error != nil {
		return nil, fmt.Errorf("API error: %s (code: %d)", geminiResp.Error.Message, geminiResp.Error.Code)
	}

	result := &Result{}
	for _, candidate := range geminiResp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil {
				decoded, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
				if err != nil {
					return nil, fmt.Errorf("failed to decode image data: %w", err)
				}
				result.ImageData = decoded
				result.MIMEType = part.InlineData.MIMEType
			}
			if part.Text != "" {
				result.Text += part.Text
			}
		}
	}

	if result.ImageData == nil {
		recordEditMetrics(c.Name(), "no_image", start)
		return nil, fmt.Errorf("no image returned in response (text: %s)", truncate(result.Text, 200))
	}

	recordEditMetrics(c.Name(), "success", start)
	log.Info().
		Int("output_bytes", len(result.ImageData)).
		Str("output_mime", result.MIMEType).
		Dur("duration", time.Since(start)).
		Msg("Gemini image editing complete")

	return result, nil
}

func (c *GeminiClient) buildRequest(req Request) geminiRequest {
	out := geminiRequest{
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
	}
	if req.System != "" {
		out.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: req.System}},
		}
	}

	parts := []geminiPart{inlinePart(req.Source, req.SourceMIME)}
	if req.Mask != nil {
		parts = append(parts, inlinePart(req.Mask, "image/png"))
	}
	for _, ref := range req.References {
		parts = append(parts, inlinePart(ref.Data, ref.MIME))
	}
	parts = append(parts, geminiPart{Text: req.Instruction})

	out.Contents = append(out.Contents, geminiContent{Role: "user", Parts: parts})
	return out
}

func inlinePart(data []byte, mime string) geminiPart {
	return geminiPart{
		InlineData: &geminiBlobData{
			MIMEType: mime,
			Data:     base64.StdEncoding.EncodeToString(data),
		},
	}
}

func recordEditMetrics(provider, result string, start time.Time) {
	metrics.New("YardStage").
		Dimension("Provider", provider).
		Dimension("Result", result).
		Metric("EditDurationMs", float64(time.Since(start).Milliseconds()), metrics.UnitMilliseconds).
		Count("EditRequests").
		Flush()
}

// truncate shortens a string to maxLen, appending "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
