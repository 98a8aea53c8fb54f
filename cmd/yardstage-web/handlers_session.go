package main

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tmercier/yardstage/internal/editor"
	"github.com/tmercier/yardstage/internal/imagegen"
	"github.com/tmercier/yardstage/internal/imaging"
	"github.com/tmercier/yardstage/internal/session"
)

// maxUploadBytes caps photo uploads; property photos from phones run
// 5-15 MB, HEIC originals a bit more.
const maxUploadBytes = 40 << 20

// POST /api/session — multipart upload of the source photo. Creates a fresh
// session; the previous photo's strokes, history, and selection never carry
// over.
func handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	data, filename, ok := readUpload(w, r, "photo")
	if !ok {
		return
	}

	mime := imaging.DetectMIME(data)
	ext := strings.ToLower(filepath.Ext(filename))

	// HEIC sniffs as octet-stream; go by extension and convert up front.
	if ext == ".heic" || ext == ".heif" {
		converted, convertedMIME, err := imaging.ConvertHEIC(data)
		if err != nil {
			log.Warn().Err(err).Str("filename", filename).Msg("HEIC conversion failed")
			httpError(w, http.StatusUnprocessableEntity, "could not convert HEIC photo")
			return
		}
		data, mime = converted, convertedMIME
	}

	if !imaging.IsSupportedUpload(mime) {
		httpError(w, http.StatusUnsupportedMediaType, "unsupported image format: "+mime)
		return
	}

	width, height, err := imaging.DecodeBounds(data)
	if err != nil {
		httpError(w, http.StatusUnprocessableEntity, "could not read image dimensions")
		return
	}

	s := sessions.Create(data, mime, width, height)
	respondJSON(w, http.StatusCreated, s.Snapshot())
}

// readUpload pulls one file out of a multipart form.
func readUpload(w http.ResponseWriter, r *http.Request, field string) ([]byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpError(w, http.StatusBadRequest, "invalid multipart form")
		return nil, "", false
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		httpError(w, http.StatusBadRequest, field+" file is required")
		return nil, "", false
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "failed to read upload")
		return nil, "", false
	}
	return data, header.Filename, true
}

// Routes under /api/session/{id}/...
func handleSessionRoutes(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/session/"), "/")
	if len(parts) < 1 || parts[0] == "" {
		httpError(w, http.StatusNotFound, "not found")
		return
	}

	s := sessions.Get(parts[0])
	if s == nil {
		httpError(w, http.StatusNotFound, "session not found")
		return
	}

	// DELETE /api/session/{id} — drop the session and everything it owns.
	if len(parts) == 1 || parts[1] == "" {
		if r.Method != http.MethodDelete {
			httpError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		sessions.Delete(s.ID)
		log.Info().Str("session", s.ID).Msg("Session invalidated")
		respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
		return
	}

	switch parts[1] {
	case "state":
		handleState(w, r, s)
	case "viewport":
		handleViewport(w, r, s)
	case "image":
		handleImage(w, r, s)
	case "strokes":
		handleStrokes(w, r, s)
	case "mask":
		handleMask(w, r, s, parts[2:])
	case "region":
		handleRegion(w, r, s, parts[2:])
	case "undo":
		handleUndo(w, r, s)
	case "redo":
		handleRedo(w, r, s)
	case "reference":
		handleReference(w, r, s)
	case "suggest-placement":
		handleSuggestPlacement(w, r, s)
	case "generate":
		handleGenerate(w, r, s, parts[2:])
	default:
		httpError(w, http.StatusNotFound, "not found")
	}
}

// GET /api/session/{id}/state
func handleState(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	respondJSON(w, http.StatusOK, s.Snapshot())
}

// POST /api/session/{id}/viewport — the browser reports the displayed image
// size so pointer coordinates can be mapped into image space. Re-sent on
// every layout change.
func handleViewport(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Width <= 0 || req.Height <= 0 {
		httpError(w, http.StatusBadRequest, "viewport dimensions must be positive")
		return
	}
	s.AttachViewport(editor.Size{Width: req.Width, Height: req.Height})
	respondJSON(w, http.StatusOK, s.Snapshot())
}

// GET /api/session/{id}/image — the image at the current history position,
// or the source photo when nothing has been generated. ?version=ID serves a
// specific history entry, ?thumb=1 a WebP thumbnail.
func handleImage(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var data []byte
	var mime string
	if versionID := r.URL.Query().Get("version"); versionID != "" {
		v, ok := s.VersionByID(versionID)
		if !ok {
			httpError(w, http.StatusNotFound, "version not found")
			return
		}
		data, mime = v.Data, v.MIME
	} else {
		data, mime = s.CurrentImage()
	}

	if r.URL.Query().Get("thumb") != "" {
		thumb, thumbMIME, err := imaging.Thumbnail(data, imaging.DefaultThumbnailMaxDimension)
		if err != nil {
			log.Warn().Err(err).Msg("Thumbnail generation failed")
			httpError(w, http.StatusInternalServerError, "thumbnail generation failed")
			return
		}
		respondImage(w, thumbMIME, thumb)
		return
	}
	respondImage(w, mime, data)
}

// POST /api/session/{id}/undo
func handleUndo(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	v, ok := s.Undo()
	respondHistoryStep(w, s, v, ok)
}

// POST /api/session/{id}/redo
func handleRedo(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	v, ok := s.Redo()
	respondHistoryStep(w, s, v, ok)
}

// respondHistoryStep reports the new position after undo/redo. Boundary
// no-ops still return 200: the UI greys the buttons from the state flags,
// never from errors.
func respondHistoryStep(w http.ResponseWriter, s *session.Session, v session.Version, moved bool) {
	resp := map[string]interface{}{
		"moved": moved,
		"state": s.Snapshot(),
	}
	if moved {
		resp["version"] = v
	}
	respondJSON(w, http.StatusOK, resp)
}

// POST /api/session/{id}/reference — multipart upload of a product photo
// the model should reproduce when staging.
func handleReference(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	data, _, ok := readUpload(w, r, "photo")
	if !ok {
		return
	}
	mime := imaging.DetectMIME(data)
	if !imaging.IsSupportedUpload(mime) {
		httpError(w, http.StatusUnsupportedMediaType, "unsupported image format: "+mime)
		return
	}
	s.SetReference(data, mime)
	respondJSON(w, http.StatusOK, s.Snapshot())
}

// POST /api/session/{id}/suggest-placement — asks the text model for a
// staging region. Optional assistance; failure leaves the user with manual
// selection.
func handleSuggestPlacement(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if genaiClient == nil {
		httpError(w, http.StatusServiceUnavailable, "placement suggestions are not available")
		return
	}
	data, mime := s.CurrentImage()
	suggestion, err := imagegen.SuggestPlacement(r.Context(), genaiClient, data, mime)
	if err != nil {
		log.Warn().Err(err).Str("session", s.ID).Msg("Placement suggestion failed")
		httpError(w, http.StatusBadGateway, "placement suggestion failed")
		return
	}
	respondJSON(w, http.StatusOK, suggestion)
}
