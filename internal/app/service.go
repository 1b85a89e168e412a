// Package service provides the core analysis service that implements
// the dependencies required by the HTTP API: job intake, the worker
// pool that runs clips through the detection pipeline, and read access
// to stored results.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/pitchvision/pitchvision/internal/adapters/detect"
	jobqueue "github.com/pitchvision/pitchvision/internal/adapters/mq/queue"
	workerpool "github.com/pitchvision/pitchvision/internal/adapters/mq/worker"
	"github.com/pitchvision/pitchvision/internal/adapters/repository"
	"github.com/pitchvision/pitchvision/internal/adapters/video"
	"github.com/pitchvision/pitchvision/internal/config"
	"github.com/pitchvision/pitchvision/internal/domain/dedupe"
	"github.com/pitchvision/pitchvision/internal/domain/fastbreak"
	"github.com/pitchvision/pitchvision/internal/domain/geometry"
	"github.com/pitchvision/pitchvision/internal/domain/model"
	"github.com/pitchvision/pitchvision/internal/domain/motion"
	"github.com/pitchvision/pitchvision/internal/domain/possession"
	"github.com/pitchvision/pitchvision/internal/pipeline"
	"github.com/pitchvision/pitchvision/internal/track"
	"github.com/pitchvision/pitchvision/pkg/logger"
	"github.com/pitchvision/pitchvision/pkg/metrics"
)

// detectionBuffer bounds the detector-to-pipeline channel so a fast
// detector does not outrun the tracker unboundedly.
const detectionBuffer = 64

// Service wires the job queue, worker pool, results store, and grid
// behind one API surface.
type Service struct {
	mu sync.RWMutex

	store   repository.Store
	deduper dedupe.Deduper
	queue   jobqueue.Queue
	pool    *workerpool.Pool
	grid    *geometry.Grid
	cfg     *config.Config

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets a custom results store.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithQueue sets a custom job queue.
func WithQueue(q jobqueue.Queue) Option {
	return func(s *Service) {
		if q != nil {
			s.queue = q
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New constructs a Service from the loaded configuration.
func New(cfg *config.Config, opts ...Option) *Service {
	if cfg == nil {
		cfg = config.New()
	}
	s := &Service{
		cfg:  cfg,
		grid: geometry.NewGrid(geometry.WithPitchSize(cfg.PitchWidth, cfg.PitchHeight)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	if s.store == nil {
		s.store = repository.NewMemStore(
			repository.WithMaxJobs(s.cfg.MaxStoredJobs),
		)
	}
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.cfg.DedupeSize),
	)
	if s.queue == nil {
		s.queue = jobqueue.NewInMemoryQueue(
			jobqueue.WithCapacity(s.cfg.JobQueueSize),
		)
	}

	workerCount := s.cfg.WorkerCount
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	s.pool = workerpool.NewPool(workerCount, s.queue, s)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "analysis service started",
		logger.Int("workers", workerCount),
		logger.Int("queue_size", s.cfg.JobQueueSize),
		logger.String("tracker", s.cfg.TrackerBackend),
	)
	return nil
}

// Stop drains the worker pool and closes the queue.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(ctx, "stopping analysis service")
	_ = s.queue.Close()
	if s.pool != nil {
		if err := s.pool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
		}
	}
	s.started = false
	s.logger.Info(ctx, "analysis service stopped")
}

// Submit registers a new analysis job and queues it for processing.
// The same clip/sidecar pair is accepted once; resubmissions return
// ErrDuplicateSubmission.
func (s *Service) Submit(ctx context.Context, videoPath, detectionsPath string, frameRate float64) (model.Job, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return model.Job{}, ErrNotStarted
	}

	if videoPath == "" {
		return model.Job{}, ErrEmptyVideoPath
	}

	key := videoPath + "|" + detectionsPath
	if s.deduper.SeenAndRecord(ctx, key) {
		metrics.RecordJobDuplicate()
		return model.Job{}, fmt.Errorf("%w: %s", ErrDuplicateSubmission, videoPath)
	}

	job := model.Job{
		ID:             uuid.NewString(),
		VideoPath:      videoPath,
		DetectionsPath: detectionsPath,
		FrameRate:      frameRate,
	}

	if err := s.store.CreateJob(ctx, job); err != nil {
		s.deduper.Unrecord(ctx, key)
		return model.Job{}, err
	}

	if !s.queue.Enqueue(ctx, job) {
		s.deduper.Unrecord(ctx, key)
		_ = s.store.SetStatus(ctx, job.ID, model.JobFailed, 0, "queue full")
		return model.Job{}, ErrQueueFull
	}

	metrics.RecordJobAccepted()
	s.logger.Info(ctx, "job accepted",
		logger.String("job_id", job.ID),
		logger.String("video", videoPath),
	)
	return job, nil
}

// Process runs one job end to end. It implements worker.Processor and
// is invoked by the pool; each invocation owns its pipeline, so no
// per-frame state is shared between jobs.
func (s *Service) Process(ctx context.Context, job model.Job) error {
	log := s.logger.Named("job").Named(job.ID)

	if err := s.store.SetStatus(ctx, job.ID, model.JobProcessing, 0, ""); err != nil {
		return err
	}

	err := s.analyze(ctx, job, log)
	if err != nil {
		_ = s.store.SetStatus(ctx, job.ID, model.JobFailed, 0, err.Error())
		return err
	}

	return s.store.SetStatus(ctx, job.ID, model.JobCompleted, 1, "")
}

// analyze streams the clip's frames and detections through a fresh
// pipeline and persists everything it emits.
func (s *Service) analyze(ctx context.Context, job model.Job, log logger.Logger) error {
	src, err := video.Open(job.VideoPath)
	if err != nil {
		return err
	}
	defer src.Close()

	frameRate := job.FrameRate
	if frameRate <= 0 {
		frameRate = src.FPS()
	}
	if frameRate <= 0 {
		frameRate = s.cfg.DefaultFrameRate
	}
	totalFrames := src.FrameCount()

	// The stream goroutine must not outlive this job: on early returns the
	// cancel unblocks its send and the drain lets it close the channel.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	detCh := make(chan detect.FrameDetections, detectionBuffer)
	detErr := make(chan error, 1)
	go func() {
		if job.DetectionsPath != "" {
			detErr <- detect.StreamFile(ctx, job.DetectionsPath, detCh)
			return
		}
		detErr <- detect.RunDetector(ctx, s.cfg.DetectorCmd, job.VideoPath, detCh)
	}()
	defer func() {
		cancel()
		for range detCh {
		}
	}()

	p := s.newPipeline(frameRate, log)

	mat := gocv.NewMat()
	defer mat.Close()

	// Detector batches arrive in ascending frame order; a pending batch
	// ahead of the current frame means the frames in between were empty.
	pending, pendingOK := detect.FrameDetections{Frame: -1}, false
	frame := 0
	for src.Read(&mat) {
		if err := ctx.Err(); err != nil {
			return err
		}

		for !pendingOK || pending.Frame < frame {
			batch, open := <-detCh
			if !open {
				pendingOK = false
				break
			}
			pending, pendingOK = batch, true
		}

		var detections []model.Detection
		if pendingOK && pending.Frame == frame {
			detections = pending.Detections
			pendingOK = false
		}

		result := p.Process(mat, detections)
		if err := s.persist(ctx, job.ID, result); err != nil {
			return err
		}

		frame++
		if totalFrames > 0 && frame%100 == 0 {
			progress := float64(frame) / float64(totalFrames)
			_ = s.store.SetStatus(ctx, job.ID, model.JobProcessing, progress, "")
		}
	}

	// Drain so the detector goroutine can finish.
	for range detCh {
	}
	if err := <-detErr; err != nil {
		return err
	}

	log.Info(ctx, "clip analyzed",
		logger.Int("frames", frame),
		logger.Float64("frame_rate", frameRate),
	)
	return nil
}

// newPipeline builds a per-job pipeline from the service configuration.
func (s *Service) newPipeline(frameRate float64, log logger.Logger) *pipeline.Pipeline {
	factory := track.NewBackendFactory(s.cfg.TrackerBackend, log)
	manager := track.NewManager(factory,
		track.WithMaxDisappeared(s.cfg.MaxDisappeared),
		track.WithLogger(log),
	)
	return pipeline.New(manager,
		pipeline.WithGrid(s.grid),
		pipeline.WithFilter(pipeline.NewFilter(
			pipeline.WithMinConfidence(s.cfg.ConfidenceThreshold),
		)),
		pipeline.WithMotionAnalyzer(motion.NewAnalyzer(
			motion.WithKickThreshold(s.cfg.KickThreshold),
			motion.WithHistorySize(s.cfg.BallHistorySize),
		)),
		pipeline.WithPossessionAnalyzer(possession.NewAnalyzer(
			possession.WithTransferThreshold(s.cfg.TransferThreshold),
		)),
		pipeline.WithClassifier(fastbreak.NewClassifier()),
		pipeline.WithFrameRate(frameRate),
		pipeline.WithLogger(log),
	)
}

// persist writes one frame's events and heatmap visit to the store.
func (s *Service) persist(ctx context.Context, jobID string, r pipeline.FrameResult) error {
	if r.BallZone >= 1 {
		if err := s.store.AddZoneVisit(ctx, jobID, r.BallZone); err != nil {
			return err
		}
	}
	for _, k := range r.Kicks {
		if err := s.store.AddKick(ctx, jobID, k); err != nil {
			return err
		}
	}
	if r.Possession != nil {
		if err := s.store.AddPossession(ctx, jobID, *r.Possession); err != nil {
			return err
		}
	}
	if r.FastBreak != nil {
		if err := s.store.AddFastBreak(ctx, jobID, *r.FastBreak); err != nil {
			return err
		}
	}
	return nil
}

// Job returns the stored record for a job id.
func (s *Service) Job(ctx context.Context, id string) (repository.JobRecord, error) {
	return s.store.Job(ctx, id)
}

// Events returns all events detected for a job.
func (s *Service) Events(ctx context.Context, id string) (repository.EventsRecord, error) {
	return s.store.Events(ctx, id)
}

// Heatmap returns a job's zone visit counts.
func (s *Service) Heatmap(ctx context.Context, id string) (map[int]int, error) {
	return s.store.Heatmap(ctx, id)
}

// ZoneLayout returns the pitch zone grid for visualization clients.
func (s *Service) ZoneLayout(ctx context.Context) []geometry.ZoneInfo {
	return s.grid.Layout()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      s.started,
		"worker_count": 0,
		"queue_size":   s.cfg.JobQueueSize,
	}
	if !s.started {
		return stats
	}

	queueLen := s.queue.Len(ctx)
	stats["worker_count"] = s.pool.Size()
	stats["queue_length"] = queueLen
	stats["stored_jobs"] = s.store.Count(ctx)
	stats["deduped_keys"] = s.deduper.Size()

	metrics.UpdateQueueSize(queueLen)
	return stats
}

// IsDuplicateSubmission reports whether err marks a resubmitted clip.
func IsDuplicateSubmission(err error) bool {
	return errors.Is(err, ErrDuplicateSubmission)
}
