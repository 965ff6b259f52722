package httpapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/agentloop/agentloop/httpapi"
	"github.com/agentloop/agentloop/internal/agentlog"
)

type fakeController struct {
	shutdown, pause, resume bool
}

func (c fakeController) IsShutdown() bool { return c.shutdown }
func (c fakeController) IsPause() bool    { return c.pause }
func (c fakeController) IsResume() bool   { return c.resume }

type fakeMonitor struct {
	allPaused, anyPaused bool
}

func (m fakeMonitor) AllThreadsPaused() bool { return m.allPaused }
func (m fakeMonitor) AnyThreadPaused() bool  { return m.anyPaused }

func TestSystemStatusProvider(t *testing.T) {
	Convey("Status derivation matches the decision table in spec §4.14", t, func() {
		cases := []struct {
			name string
			c    fakeController
			m    fakeMonitor
			want httpapi.SystemStatus
		}{
			{"shutdown wins", fakeController{shutdown: true}, fakeMonitor{}, httpapi.StatusShuttingDown},
			{"pause + all paused", fakeController{pause: true}, fakeMonitor{allPaused: true}, httpapi.StatusPaused},
			{"pause + not all paused", fakeController{pause: true}, fakeMonitor{allPaused: false}, httpapi.StatusPausing},
			{"resume + any paused", fakeController{resume: true}, fakeMonitor{anyPaused: true}, httpapi.StatusResuming},
			{"resume + none paused", fakeController{resume: true}, fakeMonitor{anyPaused: false}, httpapi.StatusActive},
		}
		for _, tc := range cases {
			provider := httpapi.NewSystemStatusProvider(tc.c, tc.m)
			So(provider.CurrentStatus(), ShouldEqual, tc.want)
		}
	})
}

func TestHandler(t *testing.T) {
	Convey("Given a handler wired to an active status and a capacity-1 queue", t, func() {
		status := httpapi.NewSystemStatusProvider(fakeController{resume: true}, fakeMonitor{})
		queue := httpapi.NewCommandQueue(1)
		log := agentlog.New(nil)
		handler := httpapi.NewHandler(status, queue, log)

		Convey("GET /api/status returns the current label", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusOK)
			var body map[string]string
			So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
			So(body["status"], ShouldEqual, "ACTIVE")
		})

		Convey("POST /api/pause enqueues a command and returns ok", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/pause", nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusOK)
			cmd, ok := queue.TryGet()
			So(ok, ShouldBeTrue)
			So(cmd, ShouldEqual, httpapi.CommandPause)
		})

		Convey("A full queue responds 503 with the documented body", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/pause", nil)
			handler.ServeHTTP(httptest.NewRecorder(), req) // fills the capacity-1 queue
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
			var body map[string]string
			So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
			So(body["error"], ShouldEqual, "Command queue is full, try again later")
		})

		Convey("An unknown path responds 404", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("A disallowed method responds 405", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/status", nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}
