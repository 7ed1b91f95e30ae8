package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	api "github.com/engagehq/pulse/internal/adapters/http/api"
	"github.com/engagehq/pulse/internal/adapters/repository"
	app "github.com/engagehq/pulse/internal/app"
	"github.com/engagehq/pulse/internal/domain/model"
	"github.com/engagehq/pulse/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeService implements api.Dependencies and api.StatsProvider in memory.
type fakeService struct {
	entries    []types.Entry
	refreshErr error
	rescored   *model.Weights
	lastLimit  int
	lastWith   *model.Weights
}

func (f *fakeService) Refresh(_ context.Context) (string, error) {
	if f.refreshErr != nil {
		return "", f.refreshErr
	}
	return "run-123", nil
}

func (f *fakeService) Rescore(_ context.Context, w model.Weights) error {
	f.rescored = &w
	return nil
}

func (f *fakeService) Rankings(_ context.Context, limit int) ([]api.Entry, error) {
	f.lastLimit = limit
	if limit > 0 && limit < len(f.entries) {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

func (f *fakeService) RankingsWith(_ context.Context, limit int, w model.Weights) ([]api.Entry, error) {
	f.lastWith = &w
	return f.Rankings(context.Background(), limit)
}

func (f *fakeService) Rank(_ context.Context, email string) (api.Entry, error) {
	for _, e := range f.entries {
		if e.Email == email {
			return e, nil
		}
	}
	return api.Entry{}, repository.ErrNotFound
}

func (f *fakeService) GetStats() types.Stats {
	return types.Stats{
		Started:         true,
		WeightSlack:     0.1,
		WeightLinear:    1.0,
		WindowDays:      30,
		Summary:         types.Summary{TotalMembers: len(f.entries), ActiveMembers: len(f.entries)},
		SlackAvailable:  true,
		LinearAvailable: true,
		LastRunID:       "run-1",
	}
}

func newTestMux(svc *fakeService, maxLimit int) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(svc, svc, maxLimit).Register(context.Background(), mux)
	return mux
}

func sampleEntries() []types.Entry {
	return []types.Entry{
		{Rank: 1, Email: "top@example.com", User: "Top", TotalScore: 9},
		{Rank: 2, Email: "mid@example.com", User: "Mid", TotalScore: 5},
		{Rank: 3, Email: "low@example.com", User: "Low", TotalScore: 1},
	}
}

func TestLeaderboardEndpoint(t *testing.T) {
	Convey("Given a server with a populated table", t, func() {
		svc := &fakeService{entries: sampleEntries()}
		mux := newTestMux(svc, 100)

		Convey("When requesting the leaderboard without a limit", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leaderboard", nil))

			Convey("Then all entries return, capped at the configured maximum", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var got []types.Entry
				So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
				So(got, ShouldHaveLength, 3)
				So(got[0].Email, ShouldEqual, "top@example.com")
				So(svc.lastLimit, ShouldEqual, 100)
			})
		})

		Convey("When requesting a valid explicit limit", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leaderboard?limit=2", nil))

			Convey("Then the limit applies", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var got []types.Entry
				So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
				So(got, ShouldHaveLength, 2)
			})
		})

		Convey("When the limit exceeds the maximum", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leaderboard?limit=101", nil))

			Convey("Then the request is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(rec.Body.String(), ShouldContainSubstring, "limit_exceeded")
			})
		})

		Convey("When the limit is not a positive integer", func() {
			for _, raw := range []string{"0", "-5", "abc"} {
				rec := httptest.NewRecorder()
				mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leaderboard?limit="+raw, nil))
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("When weight overrides are supplied", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leaderboard?w_slack=0.5&w_linear=2", nil))

			Convey("Then the simulated scoring path is used", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(svc.lastWith, ShouldNotBeNil)
				So(svc.lastWith.Slack, ShouldEqual, 0.5)
				So(svc.lastWith.Linear, ShouldEqual, 2.0)
			})
		})

		Convey("When only one override is supplied", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leaderboard?w_slack=0.5", nil))

			Convey("Then the request is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(rec.Body.String(), ShouldContainSubstring, "bad_weights")
			})
		})

		Convey("When a negative override is supplied", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leaderboard?w_slack=-1&w_linear=1", nil))

			Convey("Then the request is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestWeightsEndpoint(t *testing.T) {
	Convey("Given a server", t, func() {
		svc := &fakeService{entries: sampleEntries()}
		mux := newTestMux(svc, 100)

		Convey("When putting valid weights", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPut, "/weights", strings.NewReader(`{"slack":0.3,"linear":0.7}`))
			mux.ServeHTTP(rec, req)

			Convey("Then the service rescored with them", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(svc.rescored, ShouldNotBeNil)
				So(svc.rescored.Slack, ShouldEqual, 0.3)
				So(svc.rescored.Linear, ShouldEqual, 0.7)
				So(rec.Body.String(), ShouldContainSubstring, "rescored")
			})
		})

		Convey("When putting negative weights", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPut, "/weights", strings.NewReader(`{"slack":-0.3,"linear":0.7}`))
			mux.ServeHTTP(rec, req)

			Convey("Then the request is rejected before reaching the service", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(svc.rescored, ShouldBeNil)
			})
		})

		Convey("When putting a malformed body", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPut, "/weights", strings.NewReader(`{`))
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When using the wrong method", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/weights", nil))

			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestRefreshEndpoint(t *testing.T) {
	Convey("Given a server", t, func() {
		Convey("When triggering a run", func() {
			svc := &fakeService{}
			mux := newTestMux(svc, 100)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/refresh", nil))

			Convey("Then the run id comes back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "run-123")
				So(rec.Body.String(), ShouldContainSubstring, "completed")
			})
		})

		Convey("When a run is already in flight", func() {
			svc := &fakeService{refreshErr: app.ErrRunInProgress}
			mux := newTestMux(svc, 100)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/refresh", nil))

			Convey("Then the trigger conflicts", func() {
				So(rec.Code, ShouldEqual, http.StatusConflict)
				So(rec.Body.String(), ShouldContainSubstring, "run_in_progress")
			})
		})
	})
}

func TestRankEndpoint(t *testing.T) {
	Convey("Given a server with a populated table", t, func() {
		svc := &fakeService{entries: sampleEntries()}
		mux := newTestMux(svc, 100)

		Convey("When looking up a known email", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rank/mid@example.com", nil))

			Convey("Then the entry returns", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var got types.Entry
				So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
				So(got.Rank, ShouldEqual, 2)
				So(got.User, ShouldEqual, "Mid")
			})
		})

		Convey("When looking up an unknown email", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rank/nobody@example.com", nil))

			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the email key differs only by case", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rank/MID@example.com", nil))

			Convey("Then the lookup misses; keys are opaque", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the key is missing", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rank/", nil))

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestStatsEndpoint(t *testing.T) {
	Convey("Given a server", t, func() {
		svc := &fakeService{entries: sampleEntries()}
		mux := newTestMux(svc, 100)

		Convey("When requesting stats", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

			Convey("Then the pipeline state encodes as JSON", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var got types.Stats
				So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
				So(got.Started, ShouldBeTrue)
				So(got.TotalMembers, ShouldEqual, 3)
				So(got.LastRunID, ShouldEqual, "run-1")
			})

			Convey("Then the summary counters flatten into the payload", func() {
				var got map[string]any
				So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
				So(got["total_members"], ShouldEqual, 3.0)
				So(got["active_members"], ShouldEqual, 3.0)
			})
		})
	})
}
