package track

import (
	"context"
	"image"
	"sort"

	"github.com/pitchvision/pitchvision/internal/domain/model"
	"github.com/pitchvision/pitchvision/pkg/logger"
	"github.com/pitchvision/pitchvision/pkg/metrics"
)

// defaultMaxDisappeared is the miss count after which a track expires.
const defaultMaxDisappeared = 30

// State is a track's match status.
type State int

// Track states. A track past the disappearance limit is removed rather
// than held in an explicit expired state.
const (
	// StateActive means the track matched on the most recent frame.
	StateActive State = iota
	// StateStale means one or more consecutive misses, under the limit.
	StateStale
)

// entry is the manager's private per-track record.
type entry struct {
	backend    Backend
	class      model.ClassID
	confidence float64
	box        model.BoundingBox
	missed     int
}

// Manager owns the live track table for one job. It is owned
// exclusively by that job's pipeline and is not safe for concurrent
// use; per-job isolation removes the need for locking.
//
// Tracks are created only while the table is empty (bootstrap): every
// detection in that frame spawns a track. Afterwards each track evolves
// solely through its own backend; incoming detections are not
// re-associated with live tracks, so the track count only decreases
// through expiry until Reset.
type Manager struct {
	factory        BackendFactory
	maxDisappeared int
	nextID         int
	tracks         map[int]*entry
	log            logger.Logger
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithMaxDisappeared sets the miss count after which a track expires.
func WithMaxDisappeared(n int) Option {
	return func(m *Manager) {
		if n >= 0 {
			m.maxDisappeared = n
		}
	}
}

// WithLogger sets a custom logger for the manager.
func WithLogger(log logger.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// NewManager creates a Manager that spawns backends from factory.
func NewManager(factory BackendFactory, opts ...Option) *Manager {
	m := &Manager{
		factory:        factory,
		maxDisappeared: defaultMaxDisappeared,
		tracks:         make(map[int]*entry),
		log:            logger.Get().Named("track"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Update advances all tracks by one frame and returns snapshots of the
// tracks that matched. While the table is empty, every detection
// bootstraps a new track; a backend that rejects its box is logged and
// skipped, non-fatally. An update failure on a live track counts as a
// miss; a track is removed once its misses exceed the disappearance
// limit.
func (m *Manager) Update(frame Frame, detections []model.Detection) []model.Track {
	if len(m.tracks) == 0 {
		m.bootstrap(frame, detections)
	}

	ids := make([]int, 0, len(m.tracks))
	for id := range m.tracks {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	snapshots := make([]model.Track, 0, len(ids))
	for _, id := range ids {
		e := m.tracks[id]

		rect, ok := e.backend.Update(frame)
		if !ok {
			e.missed++
			if e.missed > m.maxDisappeared {
				_ = e.backend.Close()
				delete(m.tracks, id)
				m.log.Debug(context.Background(), "track expired",
					logger.Int("track_id", id),
					logger.Int("missed", e.missed),
				)
			}
			continue
		}

		e.missed = 0
		e.box = boxFromRect(rect)
		snapshots = append(snapshots, model.Track{
			ID:              id,
			Class:           e.class,
			Box:             e.box,
			Center:          e.box.Center(),
			Confidence:      e.confidence,
			FramesSinceSeen: e.missed,
		})
	}

	metrics.UpdateActiveTracks(len(m.tracks))
	return snapshots
}

// bootstrap spawns one track per detection. Ids keep increasing across
// bootstraps; they are never reused within a job.
func (m *Manager) bootstrap(frame Frame, detections []model.Detection) {
	for _, d := range detections {
		b := m.factory()
		if !b.Init(frame, rectFromBox(d.Box)) {
			metrics.RecordTrackerInitError()
			m.log.Warn(context.Background(), "tracker backend rejected bounding box",
				logger.String("class", d.Class.String()),
				logger.Int("x", d.Box.X),
				logger.Int("y", d.Box.Y),
			)
			_ = b.Close()
			continue
		}
		m.tracks[m.nextID] = &entry{
			backend:    b,
			class:      d.Class,
			confidence: d.Confidence,
			box:        d.Box,
		}
		m.nextID++
	}
}

// FramesSinceSeen returns a live track's consecutive miss count. It is
// zero for a track that matched on the most recent frame.
func (m *Manager) FramesSinceSeen(id int) (int, bool) {
	e, ok := m.tracks[id]
	if !ok {
		return 0, false
	}
	return e.missed, true
}

// State reports the match status of a live track.
func (m *Manager) State(id int) (State, bool) {
	e, ok := m.tracks[id]
	if !ok {
		return StateActive, false
	}
	if e.missed > 0 {
		return StateStale, true
	}
	return StateActive, true
}

// Count returns the number of live tracks, stale ones included.
func (m *Manager) Count() int {
	return len(m.tracks)
}

// Reset closes all backends and clears the track table, for reuse
// between clips.
func (m *Manager) Reset() {
	for id, e := range m.tracks {
		_ = e.backend.Close()
		delete(m.tracks, id)
	}
	m.nextID = 0
}

func rectFromBox(b model.BoundingBox) image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.W, b.Y+b.H)
}

func boxFromRect(r image.Rectangle) model.BoundingBox {
	return model.BoundingBox{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}
