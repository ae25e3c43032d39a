package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

			Convey("Then defaults are applied", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "perception")
				So(manager.subsystem, ShouldEqual, "analyzer")
				So(manager.refreshInterval, ShouldEqual, defaultRefreshInterval)
				So(manager.latencyBuckets, ShouldResemble, defaultLatencyBuckets)
			})
		})

		Convey("When creating with custom options", func() {
			manager := NewManager(
				WithNamespace("ns"),
				WithSubsystem("sub"),
				WithLatencyBuckets([]float64{1, 2}),
				WithRefreshInterval(time.Second),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then they are applied", func() {
				So(manager.namespace, ShouldEqual, "ns")
				So(manager.subsystem, ShouldEqual, "sub")
				So(manager.latencyBuckets, ShouldResemble, []float64{1, 2})
				So(manager.refreshInterval, ShouldEqual, time.Second)
				So(manager.constLabels["env"], ShouldEqual, "test")
			})
		})

		Convey("When options carry zero values", func() {
			manager := NewManager(
				WithNamespace(""),
				WithLatencyBuckets(nil),
				WithRefreshInterval(0),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then the defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "perception")
				So(manager.latencyBuckets, ShouldResemble, defaultLatencyBuckets)
				So(manager.refreshInterval, ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}

func TestInstall(t *testing.T) {
	Convey("Given a fresh manager on its own registry", t, func() {
		previous := globalManager
		Reset(func() { globalManager = previous })

		manager := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

		Convey("When it is installed", func() {
			So(Install(manager), ShouldBeNil)
			RecordReport("table", "success")
			RecordReport("table", "success")
			RecordReport("table", "generation_failure")
			RecordSectionDefaulted("table", "KEY_STRENGTHS")
			RecordLoginAttempt("failure")
			UpdateActiveSessions(3)

			Convey("Then package level recorders write to it", func() {
				So(testutil.ToFloat64(manager.reportsTotal.WithLabelValues("table", "success")), ShouldEqual, 2)
				So(testutil.ToFloat64(manager.reportsTotal.WithLabelValues("table", "generation_failure")), ShouldEqual, 1)
				So(testutil.ToFloat64(manager.sectionsDefaulted.WithLabelValues("table", "KEY_STRENGTHS")), ShouldEqual, 1)
				So(testutil.ToFloat64(manager.loginAttempts.WithLabelValues("failure")), ShouldEqual, 1)
				So(testutil.ToFloat64(manager.activeSessions), ShouldEqual, 3)
			})
		})

		Convey("When nil is installed", func() {
			So(Install(nil), ShouldEqual, ErrNotInitialized)
			So(globalManager, ShouldEqual, previous)
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording pipeline metrics", func() {
			So(func() {
				RecordReportLatency("character", 1200)
				RecordSearchRequest("news", "200")
				RecordSearchRequest("general", "error")
				RecordSearchLatency("general", 340)
				RecordEvidenceItems(10)
				RecordGenerationLatency("openai", 4200)
				RecordGenerationError("gemini")
				RecordPromptTokens(900)
			}, ShouldNotPanic)
		})

		Convey("When recording HTTP and system metrics", func() {
			So(func() {
				RecordHTTPRequest("/api/reports", "POST", "200")
				RecordHTTPRequestDuration("/api/reports", "POST", "200", 15.2)
				RecordErrorByEndpoint("/api/reports", "POST", "502")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
			}, ShouldNotPanic)
		})

		Convey("Then the custom registry exposes them", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			names := map[string]bool{}
			for _, f := range families {
				names[f.GetName()] = true
			}
			So(names["perception_analyzer_search_requests_total"], ShouldBeTrue)
			So(names["perception_analyzer_prompt_tokens"], ShouldBeTrue)
		})
	})
}

func TestRunSystemCollector(t *testing.T) {
	Convey("Given a manager with a short refresh interval", t, func() {
		manager := NewManager(
			WithPrometheusRegistry(prometheus.NewRegistry()),
			WithRefreshInterval(5*time.Millisecond),
		)

		Convey("When the collector runs until cancelled", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			manager.RunSystemCollector(ctx)

			Convey("Then runtime gauges are sampled", func() {
				So(testutil.ToFloat64(manager.systemGoroutineCount), ShouldBeGreaterThan, 0)
				So(testutil.ToFloat64(manager.systemMemoryUsage), ShouldBeGreaterThan, 0)
			})
		})
	})
}
