package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/pitchvision/pitchvision/internal/domain/model"
	"github.com/pitchvision/pitchvision/pkg/metrics"
)

// defaultMaxJobs bounds retained job records.
const defaultMaxJobs = 1000

// record is the store's private per-job state.
type record struct {
	job      model.Job
	status   model.JobStatus
	progress float64
	errMsg   string

	fastBreaks  []model.FastBreakEvent
	kicks       []model.KickEvent
	possessions []model.PossessionEvent
	zoneVisits  map[int]int
}

// MemStore is an in-memory Store. Completed records beyond the bound
// are evicted oldest-first; in-flight jobs are never evicted.
type MemStore struct {
	mu      sync.RWMutex
	jobs    map[string]*record
	order   []string
	maxJobs int
}

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithMaxJobs bounds the number of retained job records.
func WithMaxJobs(n int) Option {
	return func(s *MemStore) {
		if n > 0 {
			s.maxJobs = n
		}
	}
}

// NewMemStore creates an in-memory results store.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		jobs:    make(map[string]*record),
		maxJobs: defaultMaxJobs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateJob registers a queued job.
func (s *MemStore) CreateJob(_ context.Context, job model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.ID]; ok {
		return fmt.Errorf("%s: %w", job.ID, ErrDuplicateJob)
	}

	if len(s.jobs) >= s.maxJobs {
		s.evictOldestDone()
	}

	s.jobs[job.ID] = &record{
		job:        job,
		status:     model.JobQueued,
		zoneVisits: make(map[int]int),
	}
	s.order = append(s.order, job.ID)
	metrics.UpdateStoreJobs(len(s.jobs))
	return nil
}

// SetStatus updates a job's lifecycle state.
func (s *MemStore) SetStatus(_ context.Context, id string, status model.JobStatus, progress float64, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	r.status = status
	r.progress = progress
	r.errMsg = errMsg
	return nil
}

// Job returns a job record.
func (s *MemStore) Job(_ context.Context, id string) (JobRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.jobs[id]
	if !ok {
		return JobRecord{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return JobRecord{
		Job:      r.job,
		Status:   r.status,
		Progress: r.progress,
		Error:    r.errMsg,
	}, nil
}

// AddFastBreak appends a fast-break event.
func (s *MemStore) AddFastBreak(_ context.Context, id string, ev model.FastBreakEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	r.fastBreaks = append(r.fastBreaks, ev)
	return nil
}

// AddKick appends a kick event.
func (s *MemStore) AddKick(_ context.Context, id string, ev model.KickEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	r.kicks = append(r.kicks, ev)
	return nil
}

// AddPossession appends a possession event.
func (s *MemStore) AddPossession(_ context.Context, id string, ev model.PossessionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	r.possessions = append(r.possessions, ev)
	return nil
}

// AddZoneVisit increments a job's heatmap counter.
func (s *MemStore) AddZoneVisit(_ context.Context, id string, zone int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	r.zoneVisits[zone]++
	return nil
}

// Events returns all events recorded for a job.
func (s *MemStore) Events(_ context.Context, id string) (EventsRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.jobs[id]
	if !ok {
		return EventsRecord{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}

	out := EventsRecord{
		FastBreaks:  make([]model.FastBreakEvent, len(r.fastBreaks)),
		Kicks:       make([]model.KickEvent, len(r.kicks)),
		Possessions: make([]model.PossessionEvent, len(r.possessions)),
	}
	copy(out.FastBreaks, r.fastBreaks)
	copy(out.Kicks, r.kicks)
	copy(out.Possessions, r.possessions)
	return out, nil
}

// Heatmap returns a copy of a job's zone visit counts.
func (s *MemStore) Heatmap(_ context.Context, id string) (map[int]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}

	out := make(map[int]int, len(r.zoneVisits))
	for z, n := range r.zoneVisits {
		out[z] = n
	}
	return out, nil
}

// Count returns the number of retained job records.
func (s *MemStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// evictOldestDone removes the oldest completed or failed record. Must
// be called with s.mu held.
func (s *MemStore) evictOldestDone() {
	for i, id := range s.order {
		r, ok := s.jobs[id]
		if !ok {
			continue
		}
		if r.status == model.JobCompleted || r.status == model.JobFailed {
			delete(s.jobs, id)
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
