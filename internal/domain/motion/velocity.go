// Package motion computes per-track velocities, detects ball kicks, and
// maintains the bounded ball-position history used for prediction.
package motion

import (
	"github.com/pitchvision/pitchvision/internal/domain/model"
	"gonum.org/v1/gonum/stat"
)

// Default motion thresholds.
const (
	// defaultKickThreshold is the ball speed in pixels per frame above
	// which a kick is reported.
	defaultKickThreshold = 10.0

	// defaultHistorySize bounds the ball-position FIFO window.
	defaultHistorySize = 30

	// minPredictionSamples is the least history needed for prediction.
	minPredictionSamples = 3
)

// BallSample is one entry of the ball-position history window.
type BallSample struct {
	Frame    int
	Position model.Point
	Box      model.BoundingBox
}

// Analyzer is owned exclusively by one job's pipeline. It remembers the
// previous frame's track centers and the recent ball positions.
type Analyzer struct {
	kickThreshold float64
	historySize   int

	prev    map[int]model.Point
	history []BallSample
}

// Option applies a configuration option to the Analyzer.
type Option func(*Analyzer)

// WithKickThreshold sets the kick speed threshold in pixels per frame.
func WithKickThreshold(v float64) Option {
	return func(a *Analyzer) {
		if v > 0 {
			a.kickThreshold = v
		}
	}
}

// WithHistorySize bounds the ball-position history window.
func WithHistorySize(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.historySize = n
		}
	}
}

// NewAnalyzer creates an Analyzer with default thresholds unless
// overridden by options.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		kickThreshold: defaultKickThreshold,
		historySize:   defaultHistorySize,
		prev:          make(map[int]model.Point),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Update assigns each track its frame-to-frame velocity and records the
// ball position. A track absent from the previous frame keeps a nil
// velocity: undefined, not zero. Tracks are mutated in place and the
// same slice is returned for chaining.
func (a *Analyzer) Update(frame int, tracks []model.Track) []model.Track {
	next := make(map[int]model.Point, len(tracks))
	ballSeen := false

	for i := range tracks {
		t := &tracks[i]
		next[t.ID] = t.Center

		if p, ok := a.prev[t.ID]; ok {
			t.Velocity = &model.Velocity{
				X: t.Center.X - p.X,
				Y: t.Center.Y - p.Y,
			}
		} else {
			t.Velocity = nil
		}

		// Only the first ball feeds the history window.
		if t.Class == model.ClassBall && !ballSeen {
			ballSeen = true
			a.recordBall(frame, t)
		}
	}

	a.prev = next
	return tracks
}

// recordBall appends one ball sample, evicting the oldest entry once
// the window is full.
func (a *Analyzer) recordBall(frame int, t *model.Track) {
	a.history = append(a.history, BallSample{
		Frame:    frame,
		Position: t.Center,
		Box:      t.Box,
	})
	if len(a.history) > a.historySize {
		a.history = a.history[1:]
	}
}

// DetectKicks reports a kick event for every ball track whose defined
// velocity magnitude strictly exceeds the kick threshold.
func (a *Analyzer) DetectKicks(frame int, tracks []model.Track) []model.KickEvent {
	var kicks []model.KickEvent
	for i := range tracks {
		t := &tracks[i]
		if t.Class != model.ClassBall || t.Velocity == nil {
			continue
		}
		mag := t.Velocity.Magnitude()
		if mag > a.kickThreshold {
			kicks = append(kicks, model.KickEvent{
				Frame:       frame,
				BallTrackID: t.ID,
				Velocity:    *t.Velocity,
				Magnitude:   mag,
				Position:    t.Center,
			})
		}
	}
	return kicks
}

// PredictBallPosition extrapolates the ball position framesAhead frames
// into the future from the average velocity across the most recent two
// consecutive history pairs. It reports false with fewer than three
// history samples.
func (a *Analyzer) PredictBallPosition(framesAhead int) (model.Point, bool) {
	if len(a.history) < minPredictionSamples {
		return model.Point{}, false
	}

	recent := a.history[len(a.history)-minPredictionSamples:]
	vxs := make([]float64, 0, len(recent)-1)
	vys := make([]float64, 0, len(recent)-1)
	for i := 1; i < len(recent); i++ {
		vxs = append(vxs, recent[i].Position.X-recent[i-1].Position.X)
		vys = append(vys, recent[i].Position.Y-recent[i-1].Position.Y)
	}

	avgVX := stat.Mean(vxs, nil)
	avgVY := stat.Mean(vys, nil)

	last := a.history[len(a.history)-1].Position
	return model.Point{
		X: last.X + avgVX*float64(framesAhead),
		Y: last.Y + avgVY*float64(framesAhead),
	}, true
}

// History returns the current ball-position window, oldest first.
func (a *Analyzer) History() []BallSample {
	out := make([]BallSample, len(a.history))
	copy(out, a.history)
	return out
}

// Reset clears all retained state between clips.
func (a *Analyzer) Reset() {
	a.prev = make(map[int]model.Point)
	a.history = nil
}
