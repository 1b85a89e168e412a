// Package pipeline orchestrates per-frame event detection: filtering,
// tracking, motion analysis, possession inference, and fast-break
// classification over zone-visit sequences.
package pipeline

import (
	"context"
	"time"

	"github.com/pitchvision/pitchvision/internal/domain/fastbreak"
	"github.com/pitchvision/pitchvision/internal/domain/geometry"
	"github.com/pitchvision/pitchvision/internal/domain/model"
	"github.com/pitchvision/pitchvision/internal/domain/motion"
	"github.com/pitchvision/pitchvision/internal/domain/possession"
	"github.com/pitchvision/pitchvision/internal/track"
	"github.com/pitchvision/pitchvision/pkg/logger"
	"github.com/pitchvision/pitchvision/pkg/metrics"
)

// noPossessor marks frames before the first possession event.
const noPossessor = -1

// FrameResult carries everything one frame produced. BallZone is the
// ball's grid zone for the frame, geometry.ZoneOutside when the ball
// sits off the pitch and NoBall when no ball track matched.
type FrameResult struct {
	Frame      int
	Tracks     []model.Track
	BallZone   int
	Possession *model.PossessionEvent
	Kicks      []model.KickEvent
	FastBreak  *model.FastBreakEvent
}

// NoBall marks frames without a matched ball track.
const NoBall = -1

// Pipeline runs one job's frames in order. It owns its tracker, motion
// analyzer, and zone sequence exclusively; jobs never share a pipeline.
type Pipeline struct {
	grid       *geometry.Grid
	filter     *Filter
	tracks     *track.Manager
	motion     *motion.Analyzer
	possession *possession.Analyzer
	classifier *fastbreak.Classifier
	frameRate  float64
	log        logger.Logger

	frame         int
	possessor     int
	zoneSeq       []int
	seqStartFrame int
}

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithGrid sets the zone grid.
func WithGrid(g *geometry.Grid) Option {
	return func(p *Pipeline) {
		if g != nil {
			p.grid = g
		}
	}
}

// WithFilter sets the detection filter.
func WithFilter(f *Filter) Option {
	return func(p *Pipeline) {
		if f != nil {
			p.filter = f
		}
	}
}

// WithMotionAnalyzer sets the velocity/kick analyzer.
func WithMotionAnalyzer(a *motion.Analyzer) Option {
	return func(p *Pipeline) {
		if a != nil {
			p.motion = a
		}
	}
}

// WithPossessionAnalyzer sets the possession analyzer.
func WithPossessionAnalyzer(a *possession.Analyzer) Option {
	return func(p *Pipeline) {
		if a != nil {
			p.possession = a
		}
	}
}

// WithClassifier sets the fast-break classifier.
func WithClassifier(c *fastbreak.Classifier) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.classifier = c
		}
	}
}

// WithFrameRate sets the frame rate used to derive event times.
func WithFrameRate(fps float64) Option {
	return func(p *Pipeline) {
		if fps > 0 {
			p.frameRate = fps
		}
	}
}

// WithLogger sets a custom logger for the pipeline.
func WithLogger(log logger.Logger) Option {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// New creates a Pipeline around the given track manager. Collaborators
// default to their standard configurations unless overridden.
func New(tracks *track.Manager, opts ...Option) *Pipeline {
	p := &Pipeline{
		grid:       geometry.NewGrid(),
		filter:     NewFilter(),
		tracks:     tracks,
		motion:     motion.NewAnalyzer(),
		possession: possession.NewAnalyzer(),
		classifier: fastbreak.NewClassifier(),
		frameRate:  25,
		log:        logger.Get().Named("pipeline"),
		possessor:  noPossessor,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs one frame through the pipeline. Frames must be supplied
// in order; frame N completes before frame N+1 begins.
func (p *Pipeline) Process(frame track.Frame, detections []model.Detection) FrameResult {
	start := time.Now()
	defer func() {
		metrics.RecordFrameProcessed()
		metrics.RecordFrameLatency(float64(time.Since(start).Milliseconds()))
	}()

	idx := p.frame
	p.frame++

	kept := p.filter.Apply(detections)
	tracks := p.tracks.Update(frame, kept)
	tracks = p.motion.Update(idx, tracks)
	kicks := p.motion.DetectKicks(idx, tracks)

	result := FrameResult{Frame: idx, Tracks: tracks, Kicks: kicks}
	result.BallZone = p.ballZone(tracks)
	for range kicks {
		metrics.RecordEventDetected("kick")
	}

	event, ok := p.possession.Detect(idx, tracks)
	if ok {
		result.Possession = &event
		metrics.RecordEventDetected("possession")
	}

	switch {
	case ok && p.possessor == noPossessor:
		// First possession of the clip opens a sequence.
		p.possessor = event.PlayerTrackID
		p.startSequence(idx)
		p.appendBallZone(tracks)
	case ok && event.PlayerTrackID != p.possessor:
		// Possession flipped: close the chain and classify it.
		result.FastBreak = p.closeSequence(idx)
		p.possessor = event.PlayerTrackID
		p.startSequence(idx)
		p.appendBallZone(tracks)
	default:
		if p.possessor != noPossessor {
			p.appendBallZone(tracks)
		}
	}

	return result
}

// startSequence begins an empty zone chain at the given frame.
func (p *Pipeline) startSequence(frame int) {
	p.zoneSeq = p.zoneSeq[:0]
	p.seqStartFrame = frame
}

// closeSequence classifies the active chain and returns a fast-break
// event when it qualifies.
func (p *Pipeline) closeSequence(frame int) *model.FastBreakEvent {
	if len(p.zoneSeq) == 0 {
		return nil
	}
	if !p.classifier.Classify(p.zoneSeq) {
		return nil
	}

	zones := make([]int, len(p.zoneSeq))
	copy(zones, p.zoneSeq)

	startTime := float64(p.seqStartFrame) / p.frameRate
	endTime := float64(frame) / p.frameRate
	ev := &model.FastBreakEvent{
		StartTime: startTime,
		EndTime:   endTime,
		Duration:  endTime - startTime,
		ZoneSum:   fastbreak.ZoneSum(zones),
		PassCount: len(zones),
		Zones:     zones,
	}
	metrics.RecordEventDetected("fast_break")
	p.log.Info(context.Background(), "fast-break detected",
		logger.Int("pass_count", ev.PassCount),
		logger.Int("zone_sum", ev.ZoneSum),
		logger.Float64("duration", ev.Duration),
	)
	return ev
}

// appendBallZone extends the active chain with the ball's current zone.
// Zone 0 means the ball left the pitch; the chain resets instead of
// recording it.
func (p *Pipeline) appendBallZone(tracks []model.Track) {
	zone := p.ballZone(tracks)
	if zone == NoBall {
		return
	}
	if zone == geometry.ZoneOutside {
		p.zoneSeq = p.zoneSeq[:0]
		return
	}
	p.zoneSeq = append(p.zoneSeq, zone)
}

// ballZone maps the first ball track's center onto the grid.
func (p *Pipeline) ballZone(tracks []model.Track) int {
	for i := range tracks {
		if tracks[i].Class != model.ClassBall {
			continue
		}
		c := tracks[i].Center
		return p.grid.PixelToZone(c.X, c.Y)
	}
	return NoBall
}

// ZoneSequence returns a copy of the active zone chain.
func (p *Pipeline) ZoneSequence() []int {
	out := make([]int, len(p.zoneSeq))
	copy(out, p.zoneSeq)
	return out
}

// Frame returns the number of frames processed so far.
func (p *Pipeline) Frame() int {
	return p.frame
}

// Reset clears all per-clip state: tracker table, motion history, and
// the open zone sequence.
func (p *Pipeline) Reset() {
	p.tracks.Reset()
	p.motion.Reset()
	p.frame = 0
	p.possessor = noPossessor
	p.zoneSeq = nil
	p.seqStartFrame = 0
}
