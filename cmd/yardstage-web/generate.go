package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tmercier/yardstage/internal/imagegen"
	"github.com/tmercier/yardstage/internal/imaging"
	"github.com/tmercier/yardstage/internal/prompt"
	"github.com/tmercier/yardstage/internal/session"
)

// Generation modes.
const (
	modePlace      = "place"       // stage a product into the photo
	modeMaskedEdit = "masked_edit" // edit constrained to the painted mask
	modeRegionZoom = "region_zoom" // re-render the selected region close-up
)

// generateTimeout bounds one provider round trip; diffusion backends can
// take over a minute on large photos.
const generateTimeout = 3 * time.Minute

// --- Generation Job Management ---

type generateJob struct {
	mu        sync.Mutex
	id        string
	status    string // "pending", "processing", "complete", "error"
	errMsg    string
	versionID string
	text      string // model commentary returned with the image
}

var (
	jobsMu sync.Mutex
	jobs   = make(map[string]*generateJob)
)

// newJobID generates a cryptographically random job ID to prevent
// sequential enumeration.
func newJobID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		log.Fatal().Err(err).Msg("Failed to generate random job ID")
	}
	return "gen-" + hex.EncodeToString(b)
}

func newJob() *generateJob {
	jobsMu.Lock()
	defer jobsMu.Unlock()
	j := &generateJob{id: newJobID(), status: "pending"}
	jobs[j.id] = j
	return j
}

func getJob(id string) *generateJob {
	jobsMu.Lock()
	defer jobsMu.Unlock()
	return jobs[id]
}

func setJobError(job *generateJob, msg string) {
	job.mu.Lock()
	defer job.mu.Unlock()
	job.status = "error"
	job.errMsg = msg
	log.Error().Str("job", job.id).Str("error", msg).Msg("Generation job failed")
}

// generateRequest is the POST body for starting a generation.
type generateRequest struct {
	Mode string `json:"mode"`

	// Placement parameters (mode "place").
	Product        string `json:"product,omitempty"`
	ProductModel   string `json:"productModel,omitempty"`
	Lighting       string `json:"lighting,omitempty"`
	ScaleReference string `json:"scaleReference,omitempty"`
	Placement      string `json:"placement,omitempty"`

	// Freeform instruction (all modes; required for "masked_edit").
	Instruction string `json:"instruction,omitempty"`
}

// Routes under /api/session/{id}/generate[/...].
//
//	POST /generate          — start a generation job
//	GET  /generate/{jobID}  — poll job status
func handleGenerate(w http.ResponseWriter, r *http.Request, s *session.Session, rest []string) {
	if len(rest) > 0 && rest[0] != "" {
		handleGenerateStatus(w, r, rest[0])
		return
	}

	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	edit, note, err := buildEditRequest(s, req)
	if err != nil {
		httpError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	job := newJob()
	s.SetProcessing(true)
	go runGenerateJob(job, s, edit, note)

	respondJSON(w, http.StatusAccepted, map[string]string{"id": job.id})
}

// GET /api/session/{id}/generate/{jobID}
func handleGenerateStatus(w http.ResponseWriter, r *http.Request, jobID string) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	job := getJob(jobID)
	if job == nil {
		httpError(w, http.StatusNotFound, "job not found")
		return
	}

	job.mu.Lock()
	defer job.mu.Unlock()
	resp := map[string]interface{}{
		"id":     job.id,
		"status": job.status,
	}
	if job.versionID != "" {
		resp["versionId"] = job.versionID
	}
	if job.text != "" {
		resp["text"] = job.text
	}
	if job.errMsg != "" {
		resp["error"] = job.errMsg
	}
	respondJSON(w, http.StatusOK, resp)
}

// buildEditRequest validates the mode's preconditions against the session
// and composes the provider request. Runs synchronously so precondition
// failures surface as HTTP errors, not job errors.
func buildEditRequest(s *session.Session, req generateRequest) (imagegen.Request, string, error) {
	source, sourceMIME := s.CurrentImage()
	edit := imagegen.Request{
		Source:     source,
		SourceMIME: sourceMIME,
		System:     prompt.StagingSystemPrompt,
	}

	switch req.Mode {
	case modePlace:
		params := prompt.StagingParams{
			Product:        prompt.ProductKind(req.Product),
			ProductModel:   req.ProductModel,
			Lighting:       req.Lighting,
			ScaleReference: req.ScaleReference,
			Placement:      req.Placement,
			Instruction:    req.Instruction,
		}
		edit.Instruction = prompt.RenderPlacement(params)
		if ref := s.Reference; ref != nil {
			edit.References = []imagegen.ReferenceImage{*ref}
		}
		note := "Staged tiny home"
		if params.Product == prompt.ProductPool {
			note = "Staged swimming pool"
		}
		return edit, note, nil

	case modeMaskedEdit:
		if req.Instruction == "" {
			return imagegen.Request{}, "", fmt.Errorf("masked edit requires an instruction")
		}
		if !s.HasMask() {
			return imagegen.Request{}, "", fmt.Errorf("no mask painted")
		}
		mask, err := s.MaskPNG()
		if err != nil || mask == nil {
			return imagegen.Request{}, "", fmt.Errorf("mask export failed")
		}
		edit.Mask = mask
		edit.Instruction = prompt.RenderMaskedEdit(req.Instruction)
		return edit, "Masked edit", nil

	case modeRegionZoom:
		region, ok := s.CommittedRegion()
		if !ok {
			return imagegen.Request{}, "", fmt.Errorf("no region selected")
		}
		edit.Instruction = prompt.RenderRegionZoom(region)
		return edit, "Region close-up", nil

	default:
		return imagegen.Request{}, "", fmt.Errorf("unknown mode %q", req.Mode)
	}
}

// runGenerateJob drives one provider round trip and lands the result in the
// session history. Stroke input stays disabled for the whole flight.
func runGenerateJob(job *generateJob, s *session.Session, edit imagegen.Request, note string) {
	defer s.SetProcessing(false)

	job.mu.Lock()
	job.status = "processing"
	job.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
	defer cancel()

	result, err := editClient.Edit(ctx, edit)
	if err != nil {
		setJobError(job, fmt.Sprintf("generation failed: %v", err))
		return
	}

	data, mime := result.ImageData, result.MIMEType
	if cfg.WatermarkLabel != "" {
		stamped, stampedMIME, err := imaging.Watermark(data, cfg.WatermarkLabel)
		if err != nil {
			// Unwatermarked previews are better than failed jobs.
			log.Warn().Err(err).Msg("Watermarking failed, serving raw output")
		} else {
			data, mime = stamped, stampedMIME
		}
	}

	version := session.Version{
		ID:        uuid.NewString(),
		MIME:      mime,
		Note:      note,
		Provider:  cfg.Provider,
		CreatedAt: time.Now(),
		Data:      data,
	}
	s.ApplyResult(version)

	job.mu.Lock()
	job.status = "complete"
	job.versionID = version.ID
	job.text = result.Text
	job.mu.Unlock()

	log.Info().
		Str("job", job.id).
		Str("session", s.ID).
		Str("version", version.ID).
		Int("bytes", len(data)).
		Msg("Generation complete")
}
