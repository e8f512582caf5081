package seeder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerateGames(t *testing.T) {
	Convey("Given a batch of generated games", t, func() {
		games := generateGames(50, "13.1")

		Convey("Every game carries three augments and a valid placement", func() {
			So(games, ShouldHaveLength, 50)
			for _, g := range games {
				So(g.Augments, ShouldHaveLength, 3)
				So(g.Patch, ShouldEqual, "13.1")
				n, err := strconv.Atoi(g.Placement)
				So(err, ShouldBeNil)
				So(n, ShouldBeBetweenOrEqual, 1, 8)
			}
		})
	})
}

func TestFixedRecords(t *testing.T) {
	Convey("Given the fixed seed records", t, func() {
		Convey("Each stat endpoint has records", func() {
			So(fixedRecords("/compositions", "13.1"), ShouldNotBeEmpty)
			So(fixedRecords("/artefacts", "13.1"), ShouldNotBeEmpty)
			So(fixedRecords("/conditions", "13.1"), ShouldNotBeEmpty)
		})

		Convey("An unknown endpoint has none", func() {
			So(fixedRecords("/bogus", "13.1"), ShouldBeEmpty)
		})
	})
}

func TestRunAgainstStubServer(t *testing.T) {
	Convey("Given a stub tracker accepting every request", t, func() {
		var posts, gets int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				atomic.AddInt64(&posts, 1)
			} else {
				atomic.AddInt64(&gets, 1)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		Convey("A run submits all records and pulls all summaries", func() {
			stats, err := Run(context.Background(), &Config{
				BaseURL: srv.URL,
				Games:   20,
				Workers: 4,
				Timeout: 5 * time.Second,
				Patch:   "13.1",
			})
			So(err, ShouldBeNil)
			// 4 compositions + 3 artefacts + 3 conditions + 20 games
			So(stats.Submitted, ShouldEqual, 30)
			So(atomic.LoadInt64(&posts), ShouldEqual, 30)
			So(atomic.LoadInt64(&gets), ShouldEqual, 5)
			So(stats.Failed, ShouldEqual, 0)
		})
	})

	Convey("Given a stub tracker rejecting writes", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusBadRequest)
		}))
		defer srv.Close()

		Convey("The run surfaces the failure", func() {
			stats, err := Run(context.Background(), &Config{
				BaseURL: srv.URL,
				Games:   1,
				Workers: 1,
				Timeout: 5 * time.Second,
				Patch:   "13.1",
			})
			So(err, ShouldNotBeNil)
			So(stats.Failed, ShouldBeGreaterThan, 0)
		})
	})
}
