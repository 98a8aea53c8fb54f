package main

import (
	"encoding/json"
	"net/http"

	"github.com/tmercier/yardstage/internal/session"
)

// Routes under /api/session/{id}/region[/...].
//
//	POST /region        — resolve a drag into a committed selection
//	POST /region/cancel — discard the committed selection
func handleRegion(w http.ResponseWriter, r *http.Request, s *session.Session, rest []string) {
	if len(rest) > 0 && rest[0] == "cancel" {
		if r.Method != http.MethodPost {
			httpError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.CancelRegion()
		respondJSON(w, http.StatusOK, s.Snapshot())
		return
	}

	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req struct {
		StartX float64 `json:"startX"`
		StartY float64 `json:"startY"`
		EndX   float64 `json:"endX"`
		EndY   float64 `json:"endY"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rect, norm, ok := s.SelectRegion(req.StartX, req.StartY, req.EndX, req.EndY)
	if !ok {
		// Below the minimum size, or no viewport attached. The UI treats
		// this as "selection dismissed", same as a stray click.
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"committed": false,
			"state":     s.Snapshot(),
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"committed": true,
		"rect":      rect,
		"region":    norm,
		"state":     s.Snapshot(),
	})
}
