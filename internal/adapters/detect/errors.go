package detect

import "errors"

// Sentinel kinds for detector adapter errors.
var (
	ErrDetectorFailed = errors.New("detector command failed")
)
