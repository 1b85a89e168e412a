package fastbreak_test

import (
	"testing"

	"github.com/pitchvision/pitchvision/internal/domain/fastbreak"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClassify(t *testing.T) {
	Convey("Given a classifier with default thresholds", t, func() {
		c := fastbreak.NewClassifier()

		Convey("When the chain is too short", func() {
			Convey("Then one or two passes never qualify", func() {
				So(c.Classify([]int{18}), ShouldBeFalse)
				So(c.Classify([]int{9, 10}), ShouldBeFalse)
				So(c.Classify(nil), ShouldBeFalse)
			})
		})

		Convey("When exactly three passes are made", func() {
			Convey("Then a zone sum of 9 does not qualify", func() {
				So(c.Classify([]int{3, 3, 3}), ShouldBeFalse)
			})

			Convey("Then a zone sum of 10 qualifies", func() {
				So(c.Classify([]int{3, 3, 4}), ShouldBeTrue)
			})
		})

		Convey("When four or five passes are made", func() {
			Convey("Then a sum above 9 already qualifies", func() {
				So(c.Classify([]int{3, 3, 3, 1}), ShouldBeTrue)
			})

			Convey("Then low zones never qualify", func() {
				So(c.Classify([]int{1, 1, 1, 1}), ShouldBeFalse)
				So(c.Classify([]int{1, 2, 1, 2, 1}), ShouldBeFalse)
			})

			Convey("Then high sums qualify", func() {
				So(c.Classify([]int{1, 1, 1, 1, 9}), ShouldBeTrue)
			})
		})

		Convey("When more than five passes are made", func() {
			Convey("Then only the base rule applies", func() {
				So(c.Classify([]int{2, 2, 2, 2, 2, 2}), ShouldBeTrue)
				So(c.Classify([]int{1, 1, 1, 1, 1, 1}), ShouldBeFalse)
			})
		})
	})

	Convey("Given a classifier with custom thresholds", t, func() {
		c := fastbreak.NewClassifier(
			fastbreak.WithMinPasses(2),
			fastbreak.WithZoneSums(5, 8),
		)

		Convey("Then the custom base rule applies", func() {
			So(c.Classify([]int{3, 3}), ShouldBeTrue)
			So(c.Classify([]int{2, 2}), ShouldBeFalse)
		})
	})
}

func TestZoneSum(t *testing.T) {
	Convey("Given zone chains", t, func() {
		Convey("Then sums add every entry", func() {
			So(fastbreak.ZoneSum([]int{1, 2, 3}), ShouldEqual, 6)
			So(fastbreak.ZoneSum(nil), ShouldEqual, 0)
		})
	})
}

func TestVisitCounts(t *testing.T) {
	Convey("Given zone samples", t, func() {
		samples := []fastbreak.ZoneSample{
			{Zone: 4}, {Zone: 4}, {Zone: 9},
			{Zone: 0}, {Zone: 19},
		}

		Convey("When counting visits", func() {
			counts := fastbreak.VisitCounts(samples)

			Convey("Then only valid zones are counted", func() {
				So(counts[4], ShouldEqual, 2)
				So(counts[9], ShouldEqual, 1)
				So(counts, ShouldNotContainKey, 0)
				So(counts, ShouldNotContainKey, 19)
			})
		})
	})
}
