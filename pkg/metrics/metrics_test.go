package metrics_test

import (
	"testing"

	"github.com/okian/comptrack/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewManager(t *testing.T) {
	Convey("Given metrics manager construction", t, func() {
		Convey("When created with a private registry", func() {
			registry := prometheus.NewRegistry()
			m := metrics.NewManager(
				metrics.WithPrometheusRegistry(registry),
				metrics.WithNamespace("testns"),
				metrics.WithSubsystem("testsub"),
			)

			Convey("Then it should not be nil", func() {
				So(m, ShouldNotBeNil)
			})

			Convey("And the registry should carry registered collectors", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				// Counters with no observations are not exported, but the
				// gather call itself must succeed on a populated registry.
				So(families, ShouldNotBeNil)
			})
		})

		Convey("When created with custom histogram buckets", func() {
			registry := prometheus.NewRegistry()
			m := metrics.NewManager(
				metrics.WithPrometheusRegistry(registry),
				metrics.WithHistogramBuckets([]float64{1, 5, 10}),
			)

			Convey("Then it should not be nil", func() {
				So(m, ShouldNotBeNil)
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global metrics helpers", t, func() {
		Convey("When recording business metrics", func() {
			So(func() {
				metrics.RecordUpsert("composition")
				metrics.RecordUpsert("artefact")
				metrics.RecordEdit()
				metrics.RecordReplace()
				metrics.RecordParseSkip()
				metrics.RecordSummary("composition")
				metrics.RecordGame()
			}, ShouldNotPanic)
		})

		Convey("When recording ledger metrics", func() {
			So(func() {
				metrics.RecordReminderDispatch()
				metrics.RecordReminderRollover()
				metrics.UpdateLedgerEvents(3)
			}, ShouldNotPanic)
		})

		Convey("When recording store metrics", func() {
			So(func() {
				metrics.RecordEnvelopesScanned(10)
				metrics.RecordStoreAppendLatency(1.5)
				metrics.RecordStoreScanLatency(2.5)
				metrics.UpdateChannelCount(4)
				metrics.UpdateEnvelopeCount(42)
			}, ShouldNotPanic)
		})

		Convey("When recording HTTP metrics", func() {
			So(func() {
				metrics.RecordHTTPRequest("compositions", "POST", "200")
				metrics.RecordHTTPRequestDuration("compositions", "POST", "200", 12.0)
			}, ShouldNotPanic)
		})

		Convey("When recording system metrics", func() {
			So(func() {
				metrics.UpdateSystemMemoryUsage(1 << 20)
				metrics.UpdateSystemGoroutineCount(8)
				metrics.RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})

		Convey("When gathering the global registry", func() {
			families, err := metrics.GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}
