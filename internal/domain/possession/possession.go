// Package possession infers the ball-holding player from spatial
// proximity between the ball track and player tracks.
package possession

import (
	"math"

	"github.com/pitchvision/pitchvision/internal/domain/model"
)

// defaultTransferThreshold is the maximum ball-to-player distance in
// pixels for the ball to count as held.
const defaultTransferThreshold = 50.0

// Analyzer detects possession from a single frame's track snapshots.
// Each call is independent; the analyzer holds no per-frame state.
type Analyzer struct {
	threshold float64
}

// Option applies a configuration option to the Analyzer.
type Option func(*Analyzer)

// WithTransferThreshold sets the maximum holding distance in pixels.
func WithTransferThreshold(px float64) Option {
	return func(a *Analyzer) {
		if px > 0 {
			a.threshold = px
		}
	}
}

// NewAnalyzer creates an Analyzer with the default 50px threshold
// unless overridden by options.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{threshold: defaultTransferThreshold}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Detect finds the player nearest to the ball and emits a possession
// event when that distance is within the transfer threshold. It emits
// nothing when there is no ball track or fewer than two player tracks.
// When several ball tracks exist the first is used; multi-ball
// disambiguation is out of scope.
func (a *Analyzer) Detect(frame int, tracks []model.Track) (model.PossessionEvent, bool) {
	var players []model.Track
	var ball *model.Track

	for i := range tracks {
		switch tracks[i].Class {
		case model.ClassPlayer:
			players = append(players, tracks[i])
		case model.ClassBall:
			if ball == nil {
				ball = &tracks[i]
			}
		}
	}

	if ball == nil || len(players) < 2 {
		return model.PossessionEvent{}, false
	}

	var closest *model.Track
	minDist := math.Inf(1)
	for i := range players {
		d := distance(ball.Center, players[i].Center)
		if d < minDist {
			minDist = d
			closest = &players[i]
		}
	}

	if closest == nil || minDist > a.threshold {
		return model.PossessionEvent{}, false
	}

	return model.PossessionEvent{
		Frame:         frame,
		BallTrackID:   ball.ID,
		PlayerTrackID: closest.ID,
		Distance:      minDist,
		BallPos:       ball.Center,
		PlayerPos:     closest.Center,
	}, true
}

func distance(a, b model.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
