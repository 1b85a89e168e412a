package pipeline

import "github.com/pitchvision/pitchvision/internal/domain/model"

// defaultMinConfidence drops detections the detector scored below it.
const defaultMinConfidence = 0.5

// Filter drops detections below the confidence threshold or outside the
// tracked class set. It holds no state.
type Filter struct {
	minConfidence float64
	classes       map[model.ClassID]struct{}
}

// FilterOption applies a configuration option to the Filter.
type FilterOption func(*Filter)

// WithMinConfidence sets the minimum detection confidence kept.
func WithMinConfidence(v float64) FilterOption {
	return func(f *Filter) {
		if v >= 0 && v <= 1 {
			f.minConfidence = v
		}
	}
}

// WithClasses restricts the tracked class set.
func WithClasses(classes ...model.ClassID) FilterOption {
	return func(f *Filter) {
		if len(classes) == 0 {
			return
		}
		f.classes = make(map[model.ClassID]struct{}, len(classes))
		for _, c := range classes {
			f.classes[c] = struct{}{}
		}
	}
}

// NewFilter creates a Filter keeping players and balls at confidence
// 0.5 or above, unless overridden by options.
func NewFilter(opts ...FilterOption) *Filter {
	f := &Filter{
		minConfidence: defaultMinConfidence,
		classes: map[model.ClassID]struct{}{
			model.ClassPlayer: {},
			model.ClassBall:   {},
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Apply returns the detections that pass the confidence and class
// checks, preserving input order.
func (f *Filter) Apply(detections []model.Detection) []model.Detection {
	kept := make([]model.Detection, 0, len(detections))
	for _, d := range detections {
		if d.Confidence < f.minConfidence {
			continue
		}
		if _, ok := f.classes[d.Class]; !ok {
			continue
		}
		kept = append(kept, d)
	}
	return kept
}
