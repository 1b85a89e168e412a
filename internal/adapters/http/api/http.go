// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pitchvision/pitchvision/internal/adapters/repository"
	"github.com/pitchvision/pitchvision/internal/domain/geometry"
	"github.com/pitchvision/pitchvision/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle
// keeps the handler layer loosely coupled to implementations in other
// packages.
type Dependencies interface {
	// Submit registers and queues a clip analysis job.
	Submit(ctx context.Context, videoPath, detectionsPath string, frameRate float64) (model.Job, error)

	// Read operations expose job state and results.
	Job(ctx context.Context, id string) (repository.JobRecord, error)
	Events(ctx context.Context, id string) (repository.EventsRecord, error)
	Heatmap(ctx context.Context, id string) (map[int]int, error)
	ZoneLayout(ctx context.Context) []geometry.ZoneInfo
}

// Server wires HTTP routes for the analysis API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	jobsHandler   *JobsHandler
	zonesHandler  *ZonesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		jobsHandler:   NewJobsHandler(deps),
		zonesHandler:  NewZonesHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/zones", MetricsMiddleware(s.zonesHandler.HandleGetZones, "zones"))
	mux.HandleFunc("/jobs", MetricsMiddleware(s.jobsHandler.HandlePostJob, "jobs"))
	mux.HandleFunc("/jobs/", MetricsMiddleware(s.jobsHandler.HandleGetJob, "job"))
}

// jobRequest mirrors the wire schema for POST /jobs.
type jobRequest struct {
	VideoPath      string  `json:"video_path"`
	DetectionsPath string  `json:"detections_path"`
	FrameRate      float64 `json:"frame_rate"`
}

func (j jobRequest) validate() error {
	switch {
	case strings.TrimSpace(j.VideoPath) == "":
		return errors.New("missing video_path")
	case j.FrameRate < 0:
		return errors.New("frame_rate must be positive")
	}
	return nil
}

type jobResponse struct {
	ID     string          `json:"id"`
	Status model.JobStatus `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
