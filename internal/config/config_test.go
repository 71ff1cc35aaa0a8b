package config_test

import (
	"testing"

	"github.com/okian/lumo/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.MetricsAddr, convey.ShouldEqual, ":9091")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 2)
			convey.So(cfg.SessionCacheSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 100)
			convey.So(cfg.WeeklyWindowDays, convey.ShouldEqual, 7)
			convey.So(cfg.DefaultActivityPoints, convey.ShouldEqual, 5)
			convey.So(cfg.ActivityPoints, convey.ShouldBeEmpty)
		})
	})
}
