package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pitchvision/pitchvision/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaults(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		cfg := config.New()

		Convey("Then analysis thresholds carry their documented values", func() {
			So(cfg.Addr, ShouldEqual, ":9080")
			So(cfg.PitchWidth, ShouldAlmostEqual, 1920)
			So(cfg.PitchHeight, ShouldAlmostEqual, 1080)
			So(cfg.ConfidenceThreshold, ShouldAlmostEqual, 0.5)
			So(cfg.TransferThreshold, ShouldAlmostEqual, 50)
			So(cfg.KickThreshold, ShouldAlmostEqual, 10)
			So(cfg.MaxDisappeared, ShouldEqual, 30)
			So(cfg.BallHistorySize, ShouldEqual, 30)
			So(cfg.TrackerBackend, ShouldEqual, "csrt")
			So(cfg.DefaultFrameRate, ShouldAlmostEqual, 25)
		})
	})
}

// Load tests are split per override source: t.Setenv restores only when
// the test function ends, so a single function with sibling Convey
// branches would leak env vars between them.

func TestLoadDefaults(t *testing.T) {
	os.Unsetenv("PITCHVISION_CONFIG")

	Convey("Given a clean environment", t, func() {
		Convey("When loading without overrides", func() {
			cfg, err := config.Load(context.Background())

			Convey("Then defaults are returned", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":9080")
				So(cfg.KickThreshold, ShouldAlmostEqual, 10)
			})
		})
	})
}

func TestLoadEnvOverrides(t *testing.T) {
	os.Unsetenv("PITCHVISION_CONFIG")
	t.Setenv("PITCHVISION_ADDR", ":7070")
	t.Setenv("PITCHVISION_KICK_THRESHOLD", "15")

	Convey("Given env var overrides", t, func() {
		Convey("When loading", func() {
			cfg, err := config.Load(context.Background())

			Convey("Then the overrides win", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":7070")
				So(cfg.KickThreshold, ShouldAlmostEqual, 15)
			})
		})
	})
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "addr: \":6060\"\ntransfer_threshold: 75\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PITCHVISION_CONFIG", path)

	Convey("Given a config file", t, func() {
		Convey("When loading", func() {
			cfg, err := config.Load(context.Background())

			Convey("Then file values override defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":6060")
				So(cfg.TransferThreshold, ShouldAlmostEqual, 75)
				So(cfg.KickThreshold, ShouldAlmostEqual, 10)
			})
		})
	})
}

func TestLoadEnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "addr: \":6060\"\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PITCHVISION_CONFIG", path)
	t.Setenv("PITCHVISION_ADDR", ":5050")

	Convey("Given both a config file and an env override", t, func() {
		Convey("When loading", func() {
			cfg, err := config.Load(context.Background())

			Convey("Then the env var beats the file", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":5050")
			})
		})
	})
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("PITCHVISION_CONFIG", "/nonexistent/config.yaml")

	Convey("Given a missing config file", t, func() {
		Convey("When loading", func() {
			_, err := config.Load(context.Background())

			Convey("Then loading fails with the load sentinel", func() {
				So(err, ShouldWrap, config.ErrLoadConfig)
			})
		})
	})
}

func TestLoadInvalidOverride(t *testing.T) {
	os.Unsetenv("PITCHVISION_CONFIG")
	t.Setenv("PITCHVISION_ADDR", "")

	Convey("Given an invalid override", t, func() {
		Convey("When loading", func() {
			_, err := config.Load(context.Background())

			Convey("Then validation rejects it", func() {
				So(err, ShouldWrap, config.ErrInvalidConfig)
			})
		})
	})
}
