package possession_test

import (
	"testing"

	"github.com/pitchvision/pitchvision/internal/domain/model"
	"github.com/pitchvision/pitchvision/internal/domain/possession"
	. "github.com/smartystreets/goconvey/convey"
)

func player(id int, x, y float64) model.Track {
	return model.Track{ID: id, Class: model.ClassPlayer, Center: model.Point{X: x, Y: y}}
}

func ball(id int, x, y float64) model.Track {
	return model.Track{ID: id, Class: model.ClassBall, Center: model.Point{X: x, Y: y}}
}

func TestDetect(t *testing.T) {
	Convey("Given an analyzer with the default threshold", t, func() {
		a := possession.NewAnalyzer()

		Convey("When there is no ball track", func() {
			_, ok := a.Detect(0, []model.Track{player(1, 100, 100), player(2, 200, 200)})

			Convey("Then no possession is detected", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When there are fewer than two players", func() {
			_, ok := a.Detect(0, []model.Track{ball(3, 100, 100), player(1, 110, 100)})

			Convey("Then no possession is detected", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the nearest player is within the threshold", func() {
			tracks := []model.Track{
				ball(3, 100, 100),
				player(1, 130, 140), // 50px away
				player(2, 500, 500),
			}
			ev, ok := a.Detect(7, tracks)

			Convey("Then the nearest player holds the ball", func() {
				So(ok, ShouldBeTrue)
				So(ev.Frame, ShouldEqual, 7)
				So(ev.BallTrackID, ShouldEqual, 3)
				So(ev.PlayerTrackID, ShouldEqual, 1)
				So(ev.Distance, ShouldAlmostEqual, 50)
			})
		})

		Convey("When every player is farther than the threshold", func() {
			tracks := []model.Track{
				ball(3, 100, 100),
				player(1, 130, 141), // just past 50px
				player(2, 500, 500),
			}
			_, ok := a.Detect(0, tracks)

			Convey("Then no possession is detected", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When two players tie for nearest", func() {
			tracks := []model.Track{
				ball(3, 100, 100),
				player(1, 120, 100),
				player(2, 80, 100),
			}
			ev, ok := a.Detect(0, tracks)

			Convey("Then the first player in track order wins", func() {
				So(ok, ShouldBeTrue)
				So(ev.PlayerTrackID, ShouldEqual, 1)
			})
		})
	})

	Convey("Given an analyzer with a custom threshold", t, func() {
		a := possession.NewAnalyzer(possession.WithTransferThreshold(10))

		Convey("Then only very close players count", func() {
			tracks := []model.Track{
				ball(3, 100, 100),
				player(1, 108, 100),
				player(2, 200, 200),
			}
			ev, ok := a.Detect(0, tracks)
			So(ok, ShouldBeTrue)
			So(ev.PlayerTrackID, ShouldEqual, 1)

			tracks[1] = player(1, 111, 100)
			_, ok = a.Detect(0, tracks)
			So(ok, ShouldBeFalse)
		})
	})
}
