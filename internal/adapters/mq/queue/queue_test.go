package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/pitchvision/pitchvision/internal/adapters/mq/queue"
	"github.com/pitchvision/pitchvision/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryQueue(t *testing.T) {
	ctx := context.Background()

	Convey("Given a queue with a small capacity", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(2))

		Convey("When enqueuing within capacity", func() {
			ok1 := q.Enqueue(ctx, model.Job{ID: "a"})
			ok2 := q.Enqueue(ctx, model.Job{ID: "b"})

			Convey("Then both jobs are accepted", func() {
				So(ok1, ShouldBeTrue)
				So(ok2, ShouldBeTrue)
				So(q.Len(ctx), ShouldEqual, 2)
			})

			Convey("Then a third job is rejected without blocking", func() {
				So(q.Enqueue(ctx, model.Job{ID: "c"}), ShouldBeFalse)
			})
		})

		Convey("When dequeuing", func() {
			q.Enqueue(ctx, model.Job{ID: "a"})
			q.Enqueue(ctx, model.Job{ID: "b"})

			jobs := q.Dequeue(ctx)

			Convey("Then jobs come out in FIFO order", func() {
				So((<-jobs).ID, ShouldEqual, "a")
				So((<-jobs).ID, ShouldEqual, "b")
			})
		})

		Convey("When the queue is closed", func() {
			q.Enqueue(ctx, model.Job{ID: "a"})
			So(q.Close(), ShouldBeNil)

			Convey("Then new jobs are rejected", func() {
				So(q.IsClosed(), ShouldBeTrue)
				So(q.Enqueue(ctx, model.Job{ID: "b"}), ShouldBeFalse)
			})

			Convey("Then buffered jobs are still delivered before the channel closes", func() {
				jobs := q.Dequeue(ctx)
				j, open := <-jobs
				So(open, ShouldBeTrue)
				So(j.ID, ShouldEqual, "a")

				_, open = <-jobs
				So(open, ShouldBeFalse)
			})

			Convey("Then closing again is a no-op", func() {
				So(q.Close(), ShouldBeNil)
			})
		})

		Convey("When the consumer context is canceled", func() {
			cancelCtx, cancel := context.WithCancel(ctx)
			jobs := q.Dequeue(cancelCtx)
			cancel()
			q.Enqueue(ctx, model.Job{ID: "a"})
			// Let the delivery goroutine observe the cancellation.
			time.Sleep(50 * time.Millisecond)

			Convey("Then the delivery channel closes", func() {
				select {
				case _, open := <-jobs:
					So(open, ShouldBeFalse)
				case <-time.After(time.Second):
					So("timed out waiting for channel close", ShouldBeEmpty)
				}
			})
		})
	})
}
