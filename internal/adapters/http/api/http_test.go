package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/taskbounty/internal/adapters/http/api"
	service "github.com/okian/taskbounty/internal/app"
	"github.com/okian/taskbounty/internal/domain/report"
	"github.com/okian/taskbounty/internal/domain/request"
	"github.com/okian/taskbounty/pkg/logger"
)

const reportBody = `{
  "task": {"id": "t", "title": "Build it", "budgetUsd": 100, "acceptanceCriteria": ["works"]},
  "weights": {"price": 1},
  "winner": {"freelancerId": "fast_good", "totalScore": 0.9, "highlights": []},
  "referee": {},
  "bids": [
    {"freelancerId": "fast_good", "priceUsd": 90, "etaDays": 2, "score": {"total": 0.9}, "rank": 1, "isWinner": true, "notes": "ready"},
    {"freelancerId": "slow", "priceUsd": 50, "etaDays": 9, "score": {"total": 0.2}, "rank": 2, "isWinner": false}
  ],
  "events": []
}`

// mockStore records calls and serves a fixed snapshot.
type mockStore struct {
	mu      sync.Mutex
	snap    service.Snapshot
	applied bool
	failMsg string

	demoCalls []request.DemoParams
	tasks     []request.RunRequest
	lastCtx   context.Context
}

func (m *mockStore) RunDemo(ctx context.Context, seed, rounds int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.demoCalls = append(m.demoCalls, request.DemoParams{Seed: seed, Rounds: rounds})
	m.lastCtx = ctx
	return m.settle()
}

func (m *mockStore) RunTask(ctx context.Context, req request.RunRequest) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, req)
	m.lastCtx = ctx
	return m.settle()
}

func (m *mockStore) settle() bool {
	if m.failMsg != "" {
		m.snap.Err = m.failMsg
	}
	return m.applied
}

func (m *mockStore) Snapshot() service.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

func (m *mockStore) GetStats() map[string]interface{} {
	return map[string]interface{}{"inflight": 0, "has_report": m.snap.Report != nil}
}

func loadedStore(t *testing.T) *mockStore {
	t.Helper()
	r, err := report.Decode(strings.NewReader(reportBody))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return &mockStore{snap: service.Snapshot{Report: r, Applied: 1}, applied: true}
}

func newMux(store *mockStore) *http.ServeMux {
	server := api.NewServer(store, store, api.WithLogger(logger.Nop()))
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestServer_Register(t *testing.T) {
	Convey("Given a server with no report loaded", t, func() {
		mux := newMux(&mockStore{})

		Convey("Then the health endpoint serves metrics", func() {
			w := serve(mux, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then the stats endpoint serves JSON", func() {
			w := serve(mux, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")
			So(w.Body.String(), ShouldContainSubstring, `"has_report":false`)
		})

		Convey("Then the dashboard page shows the empty state and pre-filled forms", func() {
			w := serve(mux, httptest.NewRequest(http.MethodGet, "/", nil))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "text/html")
			body := w.Body.String()
			So(body, ShouldContainSubstring, "TaskBounty DAO")
			So(body, ShouldContainSubstring, "No report loaded.")
			So(body, ShouldContainSubstring, `name="seed" value="42"`)
			So(body, ShouldContainSubstring, `name="weight_eta" value="0.35"`)
			So(body, ShouldNotContainSubstring, "Score breakdown")
		})

		Convey("Then unknown paths are not found", func() {
			w := serve(mux, httptest.NewRequest(http.MethodGet, "/nope", nil))
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then run endpoints reject GET", func() {
			w := serve(mux, httptest.NewRequest(http.MethodGet, "/api/demo", nil))
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})

		Convey("Then the raw report is not found", func() {
			w := serve(mux, httptest.NewRequest(http.MethodGet, "/api/report/raw", nil))
			So(w.Code, ShouldEqual, http.StatusNotFound)
			var resp map[string]string
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp["code"], ShouldEqual, "not_found")
			So(resp["message"], ShouldContainSubstring, "no report loaded")
		})
	})
}

func TestReportHandler(t *testing.T) {
	Convey("Given a server with a report", t, func() {
		mux := newMux(loadedStore(t))

		Convey("When the dashboard JSON is requested with a selected bid", func() {
			w := serve(mux, httptest.NewRequest(http.MethodGet, "/api/report?bid=fast_good", nil))

			Convey("Then the cards and the breakdown are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var d struct {
					HasReport bool `json:"hasReport"`
					Bids      []struct {
						FreelancerID string `json:"freelancerId"`
						IsWinner     bool   `json:"isWinner"`
						Price        string `json:"price"`
					} `json:"bids"`
					Breakdown *struct {
						FreelancerID string `json:"freelancerId"`
						Note         string `json:"note"`
					} `json:"breakdown"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &d), ShouldBeNil)
				So(d.HasReport, ShouldBeTrue)
				So(d.Bids, ShouldHaveLength, 2)
				So(d.Bids[0].IsWinner, ShouldBeTrue)
				So(d.Bids[0].Price, ShouldEqual, "$90.00")
				So(d.Breakdown, ShouldNotBeNil)
				So(d.Breakdown.Note, ShouldEqual, "ready")
			})
		})

		Convey("When the raw report is requested", func() {
			w := serve(mux, httptest.NewRequest(http.MethodGet, "/api/report/raw", nil))

			Convey("Then it round-trips", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				back, err := report.Decode(w.Body)
				So(err, ShouldBeNil)
				So(back.Winner.FreelancerID, ShouldEqual, "fast_good")
				So(back.EventsPresence(), ShouldEqual, report.Empty)
			})
		})

		Convey("When the page is requested with a selected bid", func() {
			w := serve(mux, httptest.NewRequest(http.MethodGet, "/?bid=slow", nil))

			Convey("Then the breakdown card is rendered", func() {
				body := w.Body.String()
				So(body, ShouldContainSubstring, "Score breakdown: slow")
				So(body, ShouldContainSubstring, "No LLM note (deterministic mode).")
				So(body, ShouldContainSubstring, "No events.")
				So(body, ShouldContainSubstring, "No referee metrics.")
			})
		})
	})
}

func TestRunHandler_Demo(t *testing.T) {
	Convey("Given a server", t, func() {
		store := loadedStore(t)
		mux := newMux(store)

		Convey("When a demo is posted from a JSON client", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/demo?seed=7&rounds=3", nil)
			req.Header.Set("Accept", "application/json")
			w := serve(mux, req)

			Convey("Then the store runs it and the dashboard is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(store.demoCalls, ShouldResemble, []request.DemoParams{{Seed: 7, Rounds: 3}})
				So(w.Body.String(), ShouldContainSubstring, `"hasReport":true`)
			})
		})

		Convey("When a demo is posted from the browser without values", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/demo", strings.NewReader(""))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			w := serve(mux, req)

			Convey("Then defaults are used and the browser is redirected", func() {
				So(w.Code, ShouldEqual, http.StatusSeeOther)
				So(w.Header().Get("Location"), ShouldEqual, "/")
				So(store.demoCalls, ShouldResemble, []request.DemoParams{{Seed: 42, Rounds: 2}})
			})
		})

		Convey("When the seed is not a number", func() {
			w := serve(mux, httptest.NewRequest(http.MethodPost, "/api/demo?seed=abc", nil))

			Convey("Then it is rejected without a call", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, `"code":"bad_request"`)
				So(w.Body.String(), ShouldContainSubstring, `invalid seed`)
				So(store.demoCalls, ShouldBeEmpty)
			})
		})

		Convey("When the remote call fails", func() {
			store.applied = false
			store.failMsg = "HTTP 500: boom"
			req := httptest.NewRequest(http.MethodPost, "/api/demo", nil)
			req.Header.Set("Accept", "application/json")
			w := serve(mux, req)

			Convey("Then the error is surfaced with the kept report", func() {
				So(w.Code, ShouldEqual, http.StatusBadGateway)
				So(w.Body.String(), ShouldContainSubstring, `"error":"HTTP 500: boom"`)
				So(w.Body.String(), ShouldContainSubstring, `"hasReport":true`)
			})
		})
	})
}

func TestRunHandler_Task(t *testing.T) {
	Convey("Given a server", t, func() {
		store := loadedStore(t)
		mux := newMux(store)

		Convey("When a partial JSON form is posted", func() {
			body := `{"title": "Ship it", "criteria_text": " a \n\n b ", "use_llm": false}`
			req := httptest.NewRequest(http.MethodPost, "/api/task", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := serve(mux, req)

			Convey("Then missing fields keep their defaults", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(store.tasks, ShouldHaveLength, 1)
				got := store.tasks[0]
				So(got.Title, ShouldEqual, "Ship it")
				So(got.AcceptanceCriteria, ShouldResemble, []string{"a", "b"})
				So(got.UseLLM, ShouldBeFalse)
				So(got.BudgetUSD, ShouldEqual, 250.0)
				So(got.Model, ShouldEqual, "llama3.1:8b")
			})
		})

		Convey("When the JSON form has an unknown field", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/task", strings.NewReader(`{"budget": 1}`))
			req.Header.Set("Content-Type", "application/json")
			w := serve(mux, req)

			Convey("Then it is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(store.tasks, ShouldBeEmpty)
			})
		})

		Convey("When the browser form is posted", func() {
			form := url.Values{
				"title":         {"From browser"},
				"budget_usd":    {"99.5"},
				"criteria_text": {"one\ntwo"},
				"weight_risk":   {"2"},
				"model":         {""},
			}
			req := httptest.NewRequest(http.MethodPost, "/api/task", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			w := serve(mux, req)

			Convey("Then the values are parsed and the unchecked box means no LLM", func() {
				So(w.Code, ShouldEqual, http.StatusSeeOther)
				got := store.tasks[0]
				So(got.Title, ShouldEqual, "From browser")
				So(got.BudgetUSD, ShouldEqual, 99.5)
				So(got.AcceptanceCriteria, ShouldResemble, []string{"one", "two"})
				risk, _ := got.Weights.Number(request.WeightRisk)
				So(risk, ShouldEqual, 2.0)
				price, _ := got.Weights.Number(request.WeightPrice)
				So(price, ShouldEqual, 0.9)
				So(got.UseLLM, ShouldBeFalse)
				So(got.Model, ShouldBeEmpty)
			})
		})

		Convey("When a weight does not parse", func() {
			form := url.Values{"weight_eta": {"fast"}}
			req := httptest.NewRequest(http.MethodPost, "/api/task", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			w := serve(mux, req)

			Convey("Then it is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "invalid weight_eta")
				So(store.tasks, ShouldBeEmpty)
			})
		})
	})
}

func TestHandler(t *testing.T) {
	Convey("Given the wrapped router", t, func() {
		store := loadedStore(t)
		h := api.Handler(newMux(store))

		Convey("When a call carries a request id", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/demo", nil)
			req.Header.Set("X-Request-Id", "req-123")
			req.Header.Set("Accept", "application/json")
			serve(h, req)

			Convey("Then the store sees it in the context", func() {
				id, ok := logger.RequestID(store.lastCtx)
				So(ok, ShouldBeTrue)
				So(id, ShouldEqual, "req-123")
			})
		})

		Convey("When the client accepts gzip", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Accept-Encoding", "gzip")
			w := serve(h, req)

			Convey("Then the page is compressed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Encoding"), ShouldEqual, "gzip")
			})
		})

		Convey("When a handler panics", func() {
			w := serve(api.Handler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				panic("boom")
			})), httptest.NewRequest(http.MethodGet, "/", nil))

			Convey("Then the panic becomes a 500", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
			})
		})
	})
}
