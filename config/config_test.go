package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func writeTempConfig(t *testing.T, body string) string {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFromYAML(t *testing.T) {
	Convey("Given a fully specified config file", t, func() {
		path := writeTempConfig(t, `
kind: life
def:
  rows: 10
  cols: 20
  boundary: fixed
  checkpointFrequency: 5
  workers: 2
  dashboardAddr: ":9090"
  tickInterval: "50ms"
`)
		cfg, err := FromYAML(path)
		So(err, ShouldBeNil)

		Convey("Every field round-trips from the file", func() {
			So(cfg.Rows, ShouldEqual, 10)
			So(cfg.Cols, ShouldEqual, 20)
			So(cfg.Boundary, ShouldEqual, "fixed")
			So(cfg.CheckpointFrequency, ShouldEqual, 5)
			So(cfg.Workers, ShouldEqual, 2)
			So(cfg.DashboardAddr, ShouldEqual, ":9090")
		})

		Convey("TickDuration parses the interval", func() {
			d, err := cfg.TickDuration()
			So(err, ShouldBeNil)
			So(d, ShouldEqual, 50*time.Millisecond)
		})
	})

	Convey("Given a config omitting optional fields", t, func() {
		path := writeTempConfig(t, `
kind: life
def:
  rows: 10
  cols: 10
`)
		cfg, err := FromYAML(path)
		So(err, ShouldBeNil)

		Convey("Defaults fill in the rest", func() {
			So(cfg.Boundary, ShouldEqual, "toroidal")
			So(cfg.DashboardAddr, ShouldEqual, ":8080")
			So(cfg.TickInterval, ShouldEqual, "200ms")
			So(cfg.Workers, ShouldBeGreaterThan, 0)
		})
	})
}
