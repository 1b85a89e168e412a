// Package config defines service configuration structures and loading.
//
// Conventions:
// - New returns defaults; Load layers an optional YAML file and env vars.
// - External errors are wrapped via this package's sentinel errors.
package config

import "runtime"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// PitchWidth and PitchHeight are the pitch image dimensions in pixels.
	PitchWidth  float64 `koanf:"pitch_width"`
	PitchHeight float64 `koanf:"pitch_height"`

	// ConfidenceThreshold drops detections scored below it.
	ConfidenceThreshold float64 `koanf:"confidence_threshold"`

	// TransferThreshold is the ball-to-player possession distance in pixels.
	TransferThreshold float64 `koanf:"transfer_threshold"`

	// KickThreshold is the kick speed threshold in pixels per frame.
	KickThreshold float64 `koanf:"kick_threshold"`

	// MaxDisappeared is the miss count after which a track expires.
	MaxDisappeared int `koanf:"max_disappeared"`

	// BallHistorySize bounds the ball-position window.
	BallHistorySize int `koanf:"ball_history_size"`

	// TrackerBackend names the visual tracker strategy: csrt, kcf, mil.
	TrackerBackend string `koanf:"tracker_backend"`

	// DetectorCmd is the external detector command run for jobs that
	// carry no precomputed detections sidecar.
	DetectorCmd string `koanf:"detector_cmd"`

	// DefaultFrameRate is used when the video container reports none.
	DefaultFrameRate float64 `koanf:"default_frame_rate"`

	// WorkerCount sets the number of concurrent analysis workers.
	WorkerCount int `koanf:"worker_count"`

	// JobQueueSize bounds the in-memory job queue.
	JobQueueSize int `koanf:"job_queue_size"`

	// MaxStoredJobs bounds the in-memory results store.
	MaxStoredJobs int `koanf:"max_stored_jobs"`

	// DedupeSize bounds the duplicate-submission cache.
	DedupeSize int `koanf:"dedupe_size"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		PitchWidth:          1920,
		PitchHeight:         1080,
		ConfidenceThreshold: 0.5,
		TransferThreshold:   50,
		KickThreshold:       10,
		MaxDisappeared:      30,
		BallHistorySize:     30,
		TrackerBackend:      "csrt",
		DetectorCmd:         "",
		DefaultFrameRate:    25,
		WorkerCount:         runtime.NumCPU(),
		JobQueueSize:        256,
		MaxStoredJobs:       1000,
		DedupeSize:          10_000,
	}
}
