// Package track maintains object identity across frames on top of a
// pluggable single-object visual tracker backend.
package track

import (
	"context"
	"image"
	"strings"

	"gocv.io/x/gocv"
	"gocv.io/x/gocv/contrib"

	"github.com/pitchvision/pitchvision/pkg/logger"
)

// Frame is the opaque frame-image reference handed through to backends.
type Frame = gocv.Mat

// Backend is the capability interface a single-object visual tracker
// must provide. One backend instance serves exactly one track.
type Backend interface {
	// Init locks the backend onto the given bounding box. A false
	// return rejects the box; the candidate track is discarded.
	Init(frame Frame, box image.Rectangle) bool

	// Update advances the backend by one frame. A false return counts
	// as a miss on the owning track, not an error.
	Update(frame Frame) (image.Rectangle, bool)

	// Close releases backend resources.
	Close() error
}

// BackendFactory creates a fresh Backend per track.
type BackendFactory func() Backend

// Named tracker strategies.
const (
	StrategyCSRT = "csrt"
	StrategyKCF  = "kcf"
	StrategyMIL  = "mil"
)

// NewBackendFactory returns a factory for the named OpenCV tracker
// strategy. An unknown name falls back to CSRT with a warning.
func NewBackendFactory(strategy string, log logger.Logger) BackendFactory {
	switch strings.ToLower(strategy) {
	case StrategyCSRT:
		return func() Backend { return contrib.NewTrackerCSRT() }
	case StrategyKCF:
		return func() Backend { return contrib.NewTrackerKCF() }
	case StrategyMIL:
		return func() Backend { return gocv.NewTrackerMIL() }
	default:
		if log != nil {
			log.Warn(context.Background(), "unknown tracker strategy, using csrt",
				logger.String("strategy", strategy),
			)
		}
		return func() Backend { return contrib.NewTrackerCSRT() }
	}
}
