package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/comptrack/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaults(t *testing.T) {
	Convey("Given a fresh config", t, func() {
		cfg := config.New()

		Convey("Then defaults match the documented behavior", func() {
			So(cfg.Addr, ShouldEqual, ":9080")
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.StoreBackend, ShouldEqual, config.BackendMemory)
			So(cfg.Timezone, ShouldEqual, "Europe/Brussels")
			So(cfg.ChecklistHour, ShouldEqual, 8)
			So(cfg.CompositionWindow, ShouldEqual, 10)
			So(cfg.ArtefactWindow, ShouldEqual, 50)
			So(cfg.ConditionWindow, ShouldEqual, 100)
			So(cfg.GameWindow, ShouldEqual, 2000)
		})
	})
}

func TestLoad(t *testing.T) {
	Convey("Given a clean environment", t, func() {
		for _, key := range []string{
			"COMPTRACK_CONFIG", "COMPTRACK_ADDR", "COMPTRACK_STORE_BACKEND",
			"COMPTRACK_GAME_WINDOW", "COMPTRACK_CHECKLIST_HOUR",
		} {
			So(os.Unsetenv(key), ShouldBeNil)
		}

		Convey("When loading with no overrides", func() {
			cfg, err := config.Load()
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":9080")
		})

		Convey("When env vars override defaults", func() {
			t.Setenv("COMPTRACK_ADDR", ":7070")
			t.Setenv("COMPTRACK_GAME_WINDOW", "500")

			cfg, err := config.Load()
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":7070")
			So(cfg.GameWindow, ShouldEqual, 500)
		})

		Convey("When a YAML file is layered under env", func() {
			path := filepath.Join(t.TempDir(), "config.yaml")
			body := "addr: \":6060\"\nstore_backend: sqlite\nstore_path: tracker.db\n"
			So(os.WriteFile(path, []byte(body), 0o644), ShouldBeNil)
			t.Setenv("COMPTRACK_CONFIG", path)
			t.Setenv("COMPTRACK_ADDR", ":7071")

			cfg, err := config.Load()
			So(err, ShouldBeNil)
			// env wins over file
			So(cfg.Addr, ShouldEqual, ":7071")
			So(cfg.StoreBackend, ShouldEqual, config.BackendSQLite)
			So(cfg.StorePath, ShouldEqual, "tracker.db")
		})

		Convey("When the backend is unknown", func() {
			t.Setenv("COMPTRACK_STORE_BACKEND", "redis")

			_, err := config.Load()
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("When the checklist hour is out of range", func() {
			t.Setenv("COMPTRACK_CHECKLIST_HOUR", "25")

			_, err := config.Load()
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}
