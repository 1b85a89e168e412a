// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// ZonesHandler serves the pitch zone layout and per-job heatmaps.
type ZonesHandler struct {
	deps Dependencies
}

// NewZonesHandler creates a new zones handler.
func NewZonesHandler(deps Dependencies) *ZonesHandler {
	return &ZonesHandler{deps: deps}
}

// HandleGetZones handles GET /zones requests.
func (h *ZonesHandler) HandleGetZones(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.ZoneLayout(r.Context()))
}

// heatmapResponse maps zone numbers to ball visit counts.
type heatmapResponse struct {
	JobID string      `json:"job_id"`
	Zones map[int]int `json:"zones"`
}

func (h *JobsHandler) writeHeatmap(w http.ResponseWriter, r *http.Request, id string) {
	zones, err := h.deps.Heatmap(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, heatmapResponse{JobID: id, Zones: zones})
}
