package testclips

import "errors"

var (
	// ErrUnknownScenario indicates an unrecognized scenario name.
	ErrUnknownScenario = errors.New("testclips: unknown scenario")

	// ErrJobFailed indicates the service reported a failed job.
	ErrJobFailed = errors.New("testclips: job failed")

	// ErrTimeout indicates a job did not finish within the poll window.
	ErrTimeout = errors.New("testclips: job poll timeout")
)
