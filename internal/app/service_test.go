package service_test

import (
	"context"
	"os"
	"testing"

	"github.com/pitchvision/pitchvision/internal/adapters/mq/queue"
	"github.com/pitchvision/pitchvision/internal/adapters/repository"
	service "github.com/pitchvision/pitchvision/internal/app"
	"github.com/pitchvision/pitchvision/internal/config"
	"github.com/pitchvision/pitchvision/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	cfg := config.New()
	cfg.WorkerCount = 1
	cfg.JobQueueSize = 4
	return cfg
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service that has not started", t, func() {
		svc := service.New(testConfig())

		Convey("When submitting a job", func() {
			_, err := svc.Submit(ctx, "clip.mp4", "", 0)

			Convey("Then submission is rejected", func() {
				So(err, ShouldWrap, service.ErrNotStarted)
			})
		})
	})

	Convey("Given a started service", t, func() {
		store := repository.NewMemStore()
		svc := service.New(testConfig(), service.WithStore(store))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop(ctx)

		Convey("When submitting without a video path", func() {
			_, err := svc.Submit(ctx, "", "", 0)

			Convey("Then submission is rejected", func() {
				So(err, ShouldWrap, service.ErrEmptyVideoPath)
			})
		})

		Convey("When submitting a new clip", func() {
			job, err := svc.Submit(ctx, "clip.mp4", "dets.jsonl", 30)

			Convey("Then the job is registered", func() {
				So(err, ShouldBeNil)
				So(job.ID, ShouldNotBeEmpty)
				So(job.FrameRate, ShouldAlmostEqual, 30)

				rec, err := svc.Job(ctx, job.ID)
				So(err, ShouldBeNil)
				So(rec.Job.VideoPath, ShouldEqual, "clip.mp4")
			})

			Convey("Then resubmitting the same clip/sidecar pair is a duplicate", func() {
				_, err := svc.Submit(ctx, "clip.mp4", "dets.jsonl", 30)
				So(err, ShouldWrap, service.ErrDuplicateSubmission)
				So(service.IsDuplicateSubmission(err), ShouldBeTrue)
			})

			Convey("Then the same clip with another sidecar is accepted", func() {
				other, err := svc.Submit(ctx, "clip.mp4", "other.jsonl", 30)
				So(err, ShouldBeNil)
				So(other.ID, ShouldNotEqual, job.ID)
			})
		})

		Convey("When reading an unknown job", func() {
			_, err := svc.Job(ctx, "ghost")

			Convey("Then not found is reported", func() {
				So(err, ShouldWrap, repository.ErrNotFound)
			})
		})
	})

	Convey("Given a service whose queue rejects jobs", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(1))
		So(q.Close(), ShouldBeNil)
		store := repository.NewMemStore()
		svc := service.New(testConfig(), service.WithStore(store), service.WithQueue(q))
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When submitting", func() {
			_, err := svc.Submit(ctx, "clip.mp4", "", 0)

			Convey("Then backpressure surfaces and the clip may be retried", func() {
				So(err, ShouldWrap, service.ErrQueueFull)
				// The dedupe entry was rolled back; a retry is not a
				// duplicate.
				_, err = svc.Submit(ctx, "clip.mp4", "", 0)
				So(err, ShouldWrap, service.ErrQueueFull)
			})
		})
	})
}

func TestLifecycle(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		svc := service.New(testConfig())
		So(svc.Start(ctx), ShouldBeNil)

		Convey("Then starting again is a no-op", func() {
			So(svc.Start(ctx), ShouldBeNil)
		})

		Convey("Then stats report the running workers", func() {
			stats := svc.GetStats(ctx)
			So(stats["started"], ShouldEqual, true)
			So(stats["worker_count"], ShouldEqual, 1)
		})

		Convey("When stopped", func() {
			svc.Stop(ctx)

			Convey("Then submissions are rejected", func() {
				_, err := svc.Submit(ctx, "clip.mp4", "", 0)
				So(err, ShouldWrap, service.ErrNotStarted)
			})

			Convey("Then stopping again is a no-op", func() {
				svc.Stop(ctx)
				So(svc.GetStats(ctx)["started"], ShouldEqual, false)
			})
		})
	})

	Convey("Given the zone layout accessor", t, func() {
		svc := service.New(testConfig())

		Convey("Then all 18 zones are exposed", func() {
			So(svc.ZoneLayout(ctx), ShouldHaveLength, 18)
		})
	})
}
