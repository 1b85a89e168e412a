package testclips

import (
	"image"

	"github.com/pitchvision/pitchvision/internal/track"
)

// ReplayBackend implements track.Backend from a scripted sequence of
// rectangles instead of visual correlation. It lets tracker and
// pipeline tests run without OpenCV model state.
type ReplayBackend struct {
	boxes []image.Rectangle
	pos   int
	fail  bool
}

// NewReplayBackend scripts a backend that reports the given boxes on
// successive Update calls and then loses the target.
func NewReplayBackend(boxes ...image.Rectangle) *ReplayBackend {
	return &ReplayBackend{boxes: boxes}
}

// FailInit marks the backend to reject initialization.
func (b *ReplayBackend) FailInit() *ReplayBackend {
	b.fail = true
	return b
}

// Init records the starting box.
func (b *ReplayBackend) Init(_ track.Frame, rect image.Rectangle) bool {
	if b.fail {
		return false
	}
	if len(b.boxes) == 0 {
		b.boxes = []image.Rectangle{rect}
	}
	return true
}

// Update returns the next scripted box, or reports a miss once the
// script is exhausted. A zero rectangle in the script is a scripted
// miss: the target is lost for that frame but the script continues.
func (b *ReplayBackend) Update(_ track.Frame) (image.Rectangle, bool) {
	if b.pos >= len(b.boxes) {
		return image.Rectangle{}, false
	}
	r := b.boxes[b.pos]
	b.pos++
	if r == (image.Rectangle{}) {
		return image.Rectangle{}, false
	}
	return r, true
}

// Close implements track.Backend.
func (b *ReplayBackend) Close() error { return nil }

// ReplayFactory hands out pre-scripted backends in order, then empty
// ones that hold their initial box forever.
func ReplayFactory(backends ...*ReplayBackend) track.BackendFactory {
	i := 0
	return func() track.Backend {
		if i < len(backends) {
			b := backends[i]
			i++
			return b
		}
		return &holdBackend{}
	}
}

// holdBackend reports its initial box on every update.
type holdBackend struct {
	rect image.Rectangle
}

func (h *holdBackend) Init(_ track.Frame, rect image.Rectangle) bool {
	h.rect = rect
	return true
}

func (h *holdBackend) Update(_ track.Frame) (image.Rectangle, bool) {
	return h.rect, true
}

func (h *holdBackend) Close() error { return nil }

// ScriptedFactory builds a factory whose nth backend replays the nth
// script. Useful when a test pre-plans every track's path.
func ScriptedFactory(scripts ...[]image.Rectangle) track.BackendFactory {
	backends := make([]*ReplayBackend, len(scripts))
	for i, s := range scripts {
		backends[i] = NewReplayBackend(s...)
	}
	return ReplayFactory(backends...)
}
