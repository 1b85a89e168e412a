package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/pitchvision/pitchvision/internal/adapters/http/api"
	"github.com/pitchvision/pitchvision/internal/adapters/repository"
	service "github.com/pitchvision/pitchvision/internal/app"
	"github.com/pitchvision/pitchvision/internal/domain/geometry"
	"github.com/pitchvision/pitchvision/internal/domain/model"
	"github.com/pitchvision/pitchvision/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// stubService implements api.Dependencies and api.StatsProvider with
// canned results.
type stubService struct {
	submitErr error
	jobs      map[string]repository.JobRecord
	events    map[string]repository.EventsRecord
	heatmaps  map[string]map[int]int
}

func newStubService() *stubService {
	return &stubService{
		jobs:     make(map[string]repository.JobRecord),
		events:   make(map[string]repository.EventsRecord),
		heatmaps: make(map[string]map[int]int),
	}
}

func (s *stubService) Submit(_ context.Context, videoPath, detectionsPath string, _ float64) (model.Job, error) {
	if s.submitErr != nil {
		return model.Job{}, s.submitErr
	}
	return model.Job{ID: "job-1", VideoPath: videoPath, DetectionsPath: detectionsPath}, nil
}

func (s *stubService) Job(_ context.Context, id string) (repository.JobRecord, error) {
	rec, ok := s.jobs[id]
	if !ok {
		return repository.JobRecord{}, repository.ErrNotFound
	}
	return rec, nil
}

func (s *stubService) Events(_ context.Context, id string) (repository.EventsRecord, error) {
	ev, ok := s.events[id]
	if !ok {
		return repository.EventsRecord{}, repository.ErrNotFound
	}
	return ev, nil
}

func (s *stubService) Heatmap(_ context.Context, id string) (map[int]int, error) {
	h, ok := s.heatmaps[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return h, nil
}

func (s *stubService) ZoneLayout(_ context.Context) []geometry.ZoneInfo {
	return geometry.NewGrid().Layout()
}

func (s *stubService) GetStats(_ context.Context) map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newTestServer(stub *stubService) *httptest.Server {
	mux := http.NewServeMux()
	api.NewServer(stub, stub).Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

func TestPostJob(t *testing.T) {
	Convey("Given the API over a stub service", t, func() {
		stub := newStubService()
		ts := newTestServer(stub)
		defer ts.Close()

		Convey("When submitting a valid job", func() {
			resp, err := http.Post(ts.URL+"/jobs", "application/json",
				strings.NewReader(`{"video_path": "clip.mp4"}`))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the job is accepted as queued", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusAccepted)
				var body struct {
					ID     string `json:"id"`
					Status string `json:"status"`
				}
				So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
				So(body.ID, ShouldEqual, "job-1")
				So(body.Status, ShouldEqual, "queued")
			})
		})

		Convey("When the body is not JSON", func() {
			resp, err := http.Post(ts.URL+"/jobs", "application/json",
				strings.NewReader("not json"))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the request is rejected", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the video path is missing", func() {
			resp, err := http.Post(ts.URL+"/jobs", "application/json",
				strings.NewReader(`{"frame_rate": 25}`))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the request is rejected", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the clip was already submitted", func() {
			stub.submitErr = service.ErrDuplicateSubmission
			resp, err := http.Post(ts.URL+"/jobs", "application/json",
				strings.NewReader(`{"video_path": "clip.mp4"}`))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the API answers with a conflict", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusConflict)
			})
		})

		Convey("When the queue is full", func() {
			stub.submitErr = service.ErrQueueFull
			resp, err := http.Post(ts.URL+"/jobs", "application/json",
				strings.NewReader(`{"video_path": "clip.mp4"}`))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the API signals backpressure", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusTooManyRequests)

				var body struct {
					Code    string `json:"code"`
					Message string `json:"message"`
				}
				So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
				So(body.Code, ShouldEqual, "backpressure")
				So(body.Message, ShouldEqual, api.ErrBackpressure.Error())
			})
		})

		Convey("When using the wrong method", func() {
			resp, err := http.Get(ts.URL + "/jobs")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the route does not exist", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestGetJob(t *testing.T) {
	Convey("Given the API over a stub service with one job", t, func() {
		stub := newStubService()
		stub.jobs["job-1"] = repository.JobRecord{
			Job:      model.Job{ID: "job-1", VideoPath: "clip.mp4"},
			Status:   model.JobProcessing,
			Progress: 0.4,
		}
		stub.events["job-1"] = repository.EventsRecord{
			Kicks: []model.KickEvent{{Frame: 10, Magnitude: 14}},
			FastBreaks: []model.FastBreakEvent{
				{PassCount: 4, ZoneSum: 13, Zones: []int{1, 2, 3, 7}},
			},
		}
		stub.heatmaps["job-1"] = map[int]int{7: 3, 12: 1}

		ts := newTestServer(stub)
		defer ts.Close()

		Convey("When fetching the job", func() {
			resp, err := http.Get(ts.URL + "/jobs/job-1")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then its record is returned", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var rec repository.JobRecord
				So(json.NewDecoder(resp.Body).Decode(&rec), ShouldBeNil)
				So(rec.Status, ShouldEqual, model.JobProcessing)
				So(rec.Progress, ShouldAlmostEqual, 0.4)
			})
		})

		Convey("When fetching its events", func() {
			resp, err := http.Get(ts.URL + "/jobs/job-1/events")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then counts and events are returned", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var body struct {
					JobID          string `json:"job_id"`
					FastBreakCount int    `json:"fast_break_count"`
					KickCount      int    `json:"kick_count"`
				}
				So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
				So(body.JobID, ShouldEqual, "job-1")
				So(body.FastBreakCount, ShouldEqual, 1)
				So(body.KickCount, ShouldEqual, 1)
			})
		})

		Convey("When fetching its heatmap", func() {
			resp, err := http.Get(ts.URL + "/jobs/job-1/heatmap")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then zone counts are returned", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var body struct {
					Zones map[int]int `json:"zones"`
				}
				So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
				So(body.Zones[7], ShouldEqual, 3)
			})
		})

		Convey("When fetching an unknown job", func() {
			resp, err := http.Get(ts.URL + "/jobs/ghost")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the API answers not found", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the subresource is unknown", func() {
			resp, err := http.Get(ts.URL + "/jobs/job-1/unknown")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the API answers not found", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestZonesAndStats(t *testing.T) {
	Convey("Given the API over a stub service", t, func() {
		stub := newStubService()
		ts := newTestServer(stub)
		defer ts.Close()

		Convey("When fetching the zone layout", func() {
			resp, err := http.Get(ts.URL + "/zones")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then all 18 zones are returned", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var zones []geometry.ZoneInfo
				So(json.NewDecoder(resp.Body).Decode(&zones), ShouldBeNil)
				So(zones, ShouldHaveLength, 18)
				So(zones[0].Zone, ShouldEqual, 1)
			})
		})

		Convey("When fetching stats", func() {
			resp, err := http.Get(ts.URL + "/stats")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the service stats are returned", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var stats map[string]interface{}
				So(json.NewDecoder(resp.Body).Decode(&stats), ShouldBeNil)
				So(stats["started"], ShouldEqual, true)
			})
		})

		Convey("When scraping healthz", func() {
			resp, err := http.Get(ts.URL + "/healthz")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the metrics registry is served", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			})
		})
	})
}
