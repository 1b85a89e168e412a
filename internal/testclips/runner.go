package testclips

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/pitchvision/pitchvision/pkg/logger"
)

// Config controls a test run.
type Config struct {
	// BaseURL of a running analysis service.
	BaseURL string

	// VideoPath is the clip submitted with each sidecar. The detections
	// are scripted, so any readable clip of sufficient length works.
	VideoPath string

	// OutputDir receives generated sidecar files.
	OutputDir string

	// Frames per generated scenario.
	Frames int

	// PollInterval and PollTimeout bound job status polling.
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// Runner drives scripted scenarios through a live service.
type Runner struct {
	cfg    Config
	client *http.Client
	log    logger.Logger
}

// NewRunner creates a runner against the configured service.
func NewRunner(cfg Config) *Runner {
	if cfg.Frames <= 0 {
		cfg.Frames = 120
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 2 * time.Minute
	}
	return &Runner{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		log:    logger.Get().Named("testclips"),
	}
}

// Run generates each scenario's sidecar, submits it, and waits for the
// job to finish, reporting the events the service detected.
func (r *Runner) Run(ctx context.Context, scenarios ...Scenario) error {
	for _, sc := range scenarios {
		lines, err := Generate(sc, r.cfg.Frames)
		if err != nil {
			return err
		}

		sidecar := filepath.Join(r.cfg.OutputDir, string(sc)+".jsonl")
		if err := WriteSidecar(ctx, sidecar, lines); err != nil {
			return err
		}

		jobID, err := r.submit(ctx, sidecar)
		if err != nil {
			return err
		}
		r.log.Info(ctx, "job submitted",
			logger.String("scenario", string(sc)),
			logger.String("job_id", jobID),
		)

		if err := r.await(ctx, jobID); err != nil {
			return err
		}
		if err := r.report(ctx, jobID, sc); err != nil {
			return err
		}
	}
	return nil
}

type submitRequest struct {
	VideoPath      string `json:"video_path"`
	DetectionsPath string `json:"detections_path"`
}

type submitResponse struct {
	ID string `json:"id"`
}

func (r *Runner) submit(ctx context.Context, sidecar string) (string, error) {
	body, err := json.Marshal(submitRequest{
		VideoPath:      r.cfg.VideoPath,
		DetectionsPath: sidecar,
	})
	if err != nil {
		return "", fmt.Errorf("encoding job request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		r.cfg.BaseURL+"/jobs", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building job request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("submitting job: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("submitting job: unexpected status %d", resp.StatusCode)
	}

	var sr submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", fmt.Errorf("decoding job response: %w", err)
	}
	return sr.ID, nil
}

type jobStatusResponse struct {
	Status   string  `json:"status"`
	Progress float64 `json:"progress"`
	Error    string  `json:"error"`
}

func (r *Runner) await(ctx context.Context, jobID string) error {
	deadline := time.Now().Add(r.cfg.PollTimeout)
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		var st jobStatusResponse
		if err := r.getJSON(ctx, "/jobs/"+jobID, &st); err != nil {
			return err
		}
		switch st.Status {
		case "completed":
			return nil
		case "failed":
			return fmt.Errorf("%w: %s", ErrJobFailed, st.Error)
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("%w: job %s", ErrTimeout, jobID)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

type eventsSummary struct {
	FastBreakCount int `json:"fast_break_count"`
	KickCount      int `json:"kick_count"`
	PossessionCnt  int `json:"possession_count"`
}

func (r *Runner) report(ctx context.Context, jobID string, sc Scenario) error {
	var ev eventsSummary
	if err := r.getJSON(ctx, "/jobs/"+jobID+"/events", &ev); err != nil {
		return err
	}
	r.log.Info(ctx, "scenario finished",
		logger.String("scenario", string(sc)),
		logger.Int("fast_breaks", ev.FastBreakCount),
		logger.Int("kicks", ev.KickCount),
		logger.Int("possessions", ev.PossessionCnt),
	)
	return nil
}

func (r *Runner) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("requesting %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
