package service

import "errors"

var (
	// ErrNotStarted indicates a submit before Start.
	ErrNotStarted = errors.New("service: not started")

	// ErrEmptyVideoPath indicates a submission without a clip path.
	ErrEmptyVideoPath = errors.New("service: empty video path")

	// ErrDuplicateSubmission indicates the clip/sidecar pair was
	// already submitted.
	ErrDuplicateSubmission = errors.New("service: duplicate submission")

	// ErrQueueFull indicates the job queue rejected the submission.
	ErrQueueFull = errors.New("service: job queue full")
)
