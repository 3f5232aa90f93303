package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it uses the default namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "taskbounty")
				So(manager.subsystem, ShouldEqual, "client")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 2}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.remoteCalls.WithLabelValues("demo", OutcomeSuccess).Inc()

			Convey("Then metrics are registered under the custom names", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(strings.Join(names, ","), ShouldContainSubstring, "test_unit_remote_calls_total")
				So(manager.histogramBuckets, ShouldResemble, []float64{1, 2})
			})
		})

		Convey("When empty options are given", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "taskbounty")
				So(manager.subsystem, ShouldEqual, "client")
				So(len(manager.histogramBuckets), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording remote calls", func() {
			before := testutil.ToFloat64(globalManager.remoteCalls.WithLabelValues("run", OutcomeHTTPError))
			RecordRemoteCall("run", OutcomeHTTPError)

			Convey("Then the counter increases", func() {
				after := testutil.ToFloat64(globalManager.remoteCalls.WithLabelValues("run", OutcomeHTTPError))
				So(after-before, ShouldEqual, 1.0)
			})
		})

		Convey("When updating store gauges", func() {
			UpdateStoreInflight(2)
			UpdateReportSize(5, 12)

			Convey("Then the gauges hold the latest values", func() {
				So(testutil.ToFloat64(globalManager.storeInflight), ShouldEqual, 2.0)
				So(testutil.ToFloat64(globalManager.storeBids), ShouldEqual, 5.0)
				So(testutil.ToFloat64(globalManager.storeEvents), ShouldEqual, 12.0)
			})
		})

		Convey("When recording the remaining metrics", func() {
			So(func() {
				RecordRemoteCallDuration("demo", 12.5)
				RecordStoreOutcome("demo", OutcomeStale)
				RecordHTTPRequest("/api/report", "GET", "200")
				RecordHTTPRequestDuration("/api/report", "GET", "200", 3.0)
				RecordErrorByType("bad_request", "warning")
				RecordErrorByEndpoint("/api/demo", "POST", "bad_request")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(10)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})

		Convey("When reading the registry", func() {
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
