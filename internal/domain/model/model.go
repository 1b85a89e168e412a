// Package model contains domain models passed between layers.
package model

import "math"

// ClassID identifies the kind of object a detection or track refers to.
type ClassID int

// Tracked object classes.
const (
	ClassPlayer ClassID = iota
	ClassBall
)

// String returns a human-readable class name.
func (c ClassID) String() string {
	switch c {
	case ClassPlayer:
		return "player"
	case ClassBall:
		return "ball"
	default:
		return "unknown"
	}
}

// Point is a position on the pitch image in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoundingBox is an axis-aligned box in pixel coordinates.
type BoundingBox struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Center returns the middle point of the box.
func (b BoundingBox) Center() Point {
	return Point{
		X: float64(b.X) + float64(b.W)/2,
		Y: float64(b.Y) + float64(b.H)/2,
	}
}

// Detection is a single-frame observation produced by the external detector.
// It is consumed immediately and never stored.
type Detection struct {
	Box        BoundingBox `json:"box"`
	Class      ClassID     `json:"class"`
	Confidence float64     `json:"confidence"`
}

// Velocity is a per-frame displacement in pixels.
type Velocity struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Magnitude returns the Euclidean length of the velocity vector.
func (v Velocity) Magnitude() float64 {
	return math.Hypot(v.X, v.Y)
}

// Track is a persistent identity assigned to a detected object across
// frames. Tracks are owned exclusively by one track manager per job;
// the values handed out each frame are snapshots.
type Track struct {
	ID              int         `json:"id"`
	Class           ClassID     `json:"class"`
	Box             BoundingBox `json:"box"`
	Center          Point       `json:"center"`
	Confidence      float64     `json:"confidence"`
	FramesSinceSeen int         `json:"frames_since_seen"`
	// Velocity is nil for a track that was absent from the previous
	// frame: undefined, not zero.
	Velocity *Velocity `json:"velocity,omitempty"`
}

// PossessionEvent reports the player currently inferred to hold the ball.
type PossessionEvent struct {
	Frame         int     `json:"frame"`
	BallTrackID   int     `json:"ball_track_id"`
	PlayerTrackID int     `json:"player_track_id"`
	Distance      float64 `json:"distance"`
	BallPos       Point   `json:"ball_pos"`
	PlayerPos     Point   `json:"player_pos"`
}

// KickEvent reports a sudden ball velocity exceeding the kick threshold.
type KickEvent struct {
	Frame       int      `json:"frame"`
	BallTrackID int      `json:"ball_track_id"`
	Velocity    Velocity `json:"velocity"`
	Magnitude   float64  `json:"magnitude"`
	Position    Point    `json:"position"`
}

// FastBreakEvent is a zone sequence classified as a fast-break attacking
// run. Time fields are seconds derived from frame index and frame rate.
type FastBreakEvent struct {
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Duration  float64 `json:"duration"`
	ZoneSum   int     `json:"zone_sum"`
	PassCount int     `json:"pass_count"`
	Zones     []int   `json:"zones"`
}

// JobStatus is the lifecycle state of an analysis job.
type JobStatus string

// Job lifecycle states.
const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Job describes one clip analysis request.
type Job struct {
	ID string `json:"id"`

	// VideoPath names the clip on local storage.
	VideoPath string `json:"video_path"`

	// DetectionsPath optionally names a JSONL sidecar of precomputed
	// detections. When empty the configured detector command is run.
	DetectionsPath string `json:"detections_path,omitempty"`

	// FrameRate in frames per second. Zero means "use the video's own".
	FrameRate float64 `json:"frame_rate,omitempty"`
}
