// Package repository stores per-job analysis results: job status and
// the match events the pipeline produced.
package repository

import (
	"context"

	"github.com/pitchvision/pitchvision/internal/domain/model"
)

// JobRecord is a job plus its processing state.
type JobRecord struct {
	Job      model.Job       `json:"job"`
	Status   model.JobStatus `json:"status"`
	Progress float64         `json:"progress"`
	Error    string          `json:"error,omitempty"`
}

// EventsRecord bundles the events detected for one job.
type EventsRecord struct {
	FastBreaks  []model.FastBreakEvent  `json:"fast_breaks"`
	Kicks       []model.KickEvent       `json:"kicks"`
	Possessions []model.PossessionEvent `json:"possessions"`
}

// Store provides read/write access to job results.
type Store interface {
	// CreateJob registers a queued job. Returns ErrDuplicateJob when
	// the id already exists.
	CreateJob(ctx context.Context, job model.Job) error

	// SetStatus updates a job's lifecycle state and progress in [0,1].
	// An errMsg is retained for failed jobs.
	SetStatus(ctx context.Context, id string, status model.JobStatus, progress float64, errMsg string) error

	// Job returns a job record. Returns ErrNotFound for unknown ids.
	Job(ctx context.Context, id string) (JobRecord, error)

	// AddFastBreak, AddKick, and AddPossession append detected events.
	AddFastBreak(ctx context.Context, id string, ev model.FastBreakEvent) error
	AddKick(ctx context.Context, id string, ev model.KickEvent) error
	AddPossession(ctx context.Context, id string, ev model.PossessionEvent) error

	// AddZoneVisit increments a job's heatmap counter for a zone.
	AddZoneVisit(ctx context.Context, id string, zone int) error

	// Events returns all events recorded for a job.
	Events(ctx context.Context, id string) (EventsRecord, error)

	// Heatmap returns a job's zone -> visit-count map.
	Heatmap(ctx context.Context, id string) (map[int]int, error)

	// Count returns the number of job records retained.
	Count(ctx context.Context) int
}
