// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// eventsResponse wraps a job's detected events with summary counts.
type eventsResponse struct {
	JobID          string `json:"job_id"`
	FastBreakCount int    `json:"fast_break_count"`
	KickCount      int    `json:"kick_count"`
	PossessionCnt  int    `json:"possession_count"`
	Events         any    `json:"events"`
}

func (h *JobsHandler) writeEvents(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := h.deps.Events(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eventsResponse{
		JobID:          id,
		FastBreakCount: len(rec.FastBreaks),
		KickCount:      len(rec.Kicks),
		PossessionCnt:  len(rec.Possessions),
		Events:         rec,
	})
}
