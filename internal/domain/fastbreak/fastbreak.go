// Package fastbreak classifies zone-visit sequences as fast-break
// attacking runs using a deterministic pass-count / zone-sum heuristic.
package fastbreak

// Default classification thresholds.
const (
	defaultMinPasses   = 3
	defaultMinZoneSum  = 9
	defaultMaxPasses   = 5
	defaultHighZoneSum = 12
)

// Classifier evaluates zone sequences. It is pure and stateless; one
// instance may be shared across jobs.
type Classifier struct {
	minPasses   int
	minZoneSum  int
	maxPasses   int
	highZoneSum int
}

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithMinPasses sets the minimum sequence length for any fast-break.
func WithMinPasses(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.minPasses = n
		}
	}
}

// WithZoneSums sets the zone-sum thresholds: min for sequences of at
// least minPasses, high for the stricter 4-5 pass rule.
func WithZoneSums(minSum, highSum int) Option {
	return func(c *Classifier) {
		if minSum > 0 && highSum > minSum {
			c.minZoneSum = minSum
			c.highZoneSum = highSum
		}
	}
}

// NewClassifier creates a Classifier with the default thresholds unless
// overridden by options.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		minPasses:   defaultMinPasses,
		minZoneSum:  defaultMinZoneSum,
		maxPasses:   defaultMaxPasses,
		highZoneSum: defaultHighZoneSum,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify reports whether the ordered zone sequence qualifies as a
// fast-break. Two independent rules apply, both with strict sums:
//
//	rule A: len >= minPasses and sum > minZoneSum
//	rule B: minPasses < len <= maxPasses and sum > highZoneSum
//
// Rule B is an additional case, not a replacement: a 4-pass sequence
// that already satisfies rule A qualifies regardless of rule B.
func (c *Classifier) Classify(zones []int) bool {
	if len(zones) < c.minPasses {
		return false
	}

	sum := ZoneSum(zones)

	if len(zones) >= c.minPasses && sum > c.minZoneSum {
		return true
	}
	if len(zones) > c.minPasses && len(zones) <= c.maxPasses && sum > c.highZoneSum {
		return true
	}
	return false
}

// ZoneSum returns the sum of zone ids in a sequence.
func ZoneSum(zones []int) int {
	sum := 0
	for _, z := range zones {
		sum += z
	}
	return sum
}

// ZoneSample pairs a zone visit with its timestamp in seconds.
type ZoneSample struct {
	Zone      int     `json:"zone"`
	Timestamp float64 `json:"timestamp"`
}

// VisitCounts aggregates zone samples into a zone -> visit-count map for
// downstream heatmap rendering. Samples outside [1,18] are ignored. It
// plays no part in classification.
func VisitCounts(samples []ZoneSample) map[int]int {
	counts := make(map[int]int)
	for _, s := range samples {
		if s.Zone >= 1 && s.Zone <= 18 {
			counts[s.Zone]++
		}
	}
	return counts
}
