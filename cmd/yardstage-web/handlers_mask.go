package main

import (
	"encoding/json"
	"net/http"

	"github.com/tmercier/yardstage/internal/session"
)

// POST /api/session/{id}/strokes — a batch of pointer gestures. The browser
// flushes sealed strokes; the server replays them in order so the exported
// mask is reproducible from the stroke log alone.
func handleStrokes(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req struct {
		Strokes []session.StrokeInput `json:"strokes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Strokes) == 0 {
		httpError(w, http.StatusBadRequest, "no strokes provided")
		return
	}
	if err := s.ApplyStrokes(req.Strokes); err != nil {
		httpError(w, http.StatusConflict, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, s.Snapshot())
}

// Routes under /api/session/{id}/mask[/...].
//
//	GET  /mask       — current mask PNG (all black until painted)
//	POST /mask/clear — drop all strokes
func handleMask(w http.ResponseWriter, r *http.Request, s *session.Session, rest []string) {
	if len(rest) > 0 && rest[0] == "clear" {
		if r.Method != http.MethodPost {
			httpError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.ClearMask()
		respondJSON(w, http.StatusOK, s.Snapshot())
		return
	}

	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	mask, err := s.MaskPNG()
	if err != nil {
		httpError(w, http.StatusInternalServerError, "mask export failed")
		return
	}
	if mask == nil {
		httpError(w, http.StatusConflict, "viewport not attached")
		return
	}
	respondImage(w, "image/png", mask)
}
