// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pitchvision/pitchvision/internal/adapters/repository"
	service "github.com/pitchvision/pitchvision/internal/app"
	"github.com/pitchvision/pitchvision/internal/domain/model"
)

// JobsHandler handles job submission and job reads.
type JobsHandler struct {
	deps Dependencies
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(deps Dependencies) *JobsHandler {
	return &JobsHandler{deps: deps}
}

// HandlePostJob handles POST /jobs requests.
func (h *JobsHandler) HandlePostJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req jobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	job, err := h.deps.Submit(r.Context(), req.VideoPath, req.DetectionsPath, req.FrameRate)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateSubmission):
			writeError(w, http.StatusConflict, "duplicate", err)
		case errors.Is(err, service.ErrQueueFull):
			writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
		case errors.Is(err, service.ErrEmptyVideoPath):
			writeError(w, http.StatusBadRequest, "bad_request", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", err)
		}
		return
	}
	writeJSON(w, http.StatusAccepted, jobResponse{ID: job.ID, Status: model.JobQueued})
}

// HandleGetJob handles GET /jobs/{id} and its subresources
// /jobs/{id}/events and /jobs/{id}/heatmap.
func (h *JobsHandler) HandleGetJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/jobs/")
	id, sub, _ := strings.Cut(path, "/")
	if id == "" || strings.Contains(sub, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	switch sub {
	case "":
		h.writeJob(w, r, id)
	case "events":
		h.writeEvents(w, r, id)
	case "heatmap":
		h.writeHeatmap(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (h *JobsHandler) writeJob(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := h.deps.Job(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// writeStoreError translates repository errors to HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", err)
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", err)
}
