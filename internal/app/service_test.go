package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	service "github.com/okian/comptrack/internal/app"
	"github.com/okian/comptrack/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func newStartedService(t *testing.T) (*service.Service, func()) {
	t.Helper()
	dir := t.TempDir()
	svc := service.New(
		service.WithLedgerPath(filepath.Join(dir, "events.json")),
	)
	ctx, cancel := context.WithCancel(context.Background())
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start service: %v", err)
	}
	return svc, func() {
		svc.Stop()
		cancel()
	}
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a service on the memory backend", t, func() {
		svc, stop := newStartedService(t)
		defer stop()
		ctx := context.Background()

		Convey("Starting twice is a no-op", func() {
			So(svc.Start(ctx), ShouldBeNil)
		})

		Convey("Stats report the backend before any writes", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldBeTrue)
			So(stats["backend"], ShouldEqual, "memory")
		})
	})

	Convey("Given a service with an unknown timezone", t, func() {
		svc := service.New(service.WithTimezone("Mars/Olympus"))

		Convey("Start fails", func() {
			So(svc.Start(context.Background()), ShouldNotBeNil)
		})
	})
}

func TestServiceRecordFlow(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, stop := newStartedService(t)
		defer stop()
		ctx := context.Background()

		Convey("Submitted compositions feed the summary", func() {
			edited, err := svc.SubmitComposition(ctx, model.CompositionStat{
				Name: "SG", AvgPlacement: 4.05, WinRate: "18%", Top4Rate: "61%", Patch: "13.1",
			})
			So(err, ShouldBeNil)
			So(edited, ShouldBeFalse)

			report, err := svc.CompositionSummary(ctx, "13.1")
			So(err, ShouldBeNil)
			So(report.Tiers, ShouldHaveLength, 1)
			So(report.Tiers[0].Rows[0].Name, ShouldEqual, "SG")
		})

		Convey("A condition reuses the composition baseline", func() {
			_, err := svc.SubmitComposition(ctx, model.CompositionStat{
				Name: "Akali", AvgPlacement: 4.30, WinRate: "12%", Top4Rate: "55%", Patch: "13.1",
			})
			So(err, ShouldBeNil)

			entry, err := svc.SubmitCondition(ctx, "Akali", "No items", 4.11)
			So(err, ShouldBeNil)
			So(entry.Base, ShouldAlmostEqual, 4.30, 1e-9)
			So(entry.Delta, ShouldAlmostEqual, -0.19, 1e-9)

			report, err := svc.ConditionSummary(ctx, "Akali")
			So(err, ShouldBeNil)
			So(report.Rows, ShouldHaveLength, 1)
		})

		Convey("Games accumulate sequence numbers in the shared log", func() {
			seq1, err := svc.SubmitGame(ctx, model.GameEntry{
				Composition: "SG", Placement: 3, Patch: "13.1",
				Augments: [3]string{"Cybernetic Uplink"},
			}, true)
			So(err, ShouldBeNil)
			So(seq1, ShouldEqual, 1)

			seq2, err := svc.SubmitGame(ctx, model.GameEntry{
				Composition: "SG", Placement: 5, Patch: "13.1",
			}, false)
			So(err, ShouldBeNil)
			So(seq2, ShouldEqual, 2)
		})

		Convey("Stats report the accumulated store sizes", func() {
			_, err := svc.SubmitComposition(ctx, model.CompositionStat{
				Name: "Frost", AvgPlacement: 4.70, Patch: "13.1",
			})
			So(err, ShouldBeNil)

			stats := svc.GetStats()
			So(stats["channels"], ShouldBeGreaterThan, 0)
			So(stats["envelopes"], ShouldBeGreaterThan, 0)
		})
	})
}

func TestServiceReminders(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, stop := newStartedService(t)
		defer stop()
		ctx := context.Background()

		Convey("Reminders round-trip through the ledger", func() {
			err := svc.AddReminder(ctx, model.ReminderEvent{
				Name: "Sport", Date: time.Now().Add(time.Hour), Repeat: model.RepeatWeekly,
			})
			So(err, ShouldBeNil)

			events, err := svc.ListReminders(ctx)
			So(err, ShouldBeNil)
			So(events, ShouldHaveLength, 1)
			So(events[0].Name, ShouldEqual, "Sport")

			So(svc.DeleteReminder(ctx, "Sport"), ShouldBeNil)
			events, err = svc.ListReminders(ctx)
			So(err, ShouldBeNil)
			So(events, ShouldBeEmpty)
		})
	})
}

func TestServiceSheetDisabled(t *testing.T) {
	Convey("Given a service without a sheet manifest", t, func() {
		svc, stop := newStartedService(t)
		defer stop()

		Convey("Sheet lookups report the disabled state", func() {
			So(svc.SheetCompositions(), ShouldBeEmpty)
			_, err := svc.SheetInfo("sg")
			So(err, ShouldEqual, service.ErrSheetDisabled)
			_, err = svc.SheetBuilds("sg", "")
			So(err, ShouldEqual, service.ErrSheetDisabled)
		})
	})
}
