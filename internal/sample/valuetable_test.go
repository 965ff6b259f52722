package sample_test

import (
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/agentloop/agentloop/internal/sample"
)

func TestValueTableGetSetAdd(t *testing.T) {
	Convey("Given a freshly allocated ValueTable", t, func() {
		vt := sample.NewValueTable(3, 3, 1.5)
		c := sample.Coord{X: 1, Y: 1, VXI: 4, VYI: 4}

		Convey("every cell starts at the initial value", func() {
			So(vt.Get(c), ShouldEqual, 1.5)
		})

		Convey("Set overwrites a cell", func() {
			vt.Set(c, 9)
			So(vt.Get(c), ShouldEqual, 9)
		})

		Convey("Add accumulates onto a cell", func() {
			newVal, ok := vt.Add(c, 0.5)
			So(ok, ShouldBeTrue)
			So(newVal, ShouldEqual, 2.0)
			So(vt.Get(c), ShouldEqual, 2.0)
		})
	})
}

func TestValueTableCopyParamsFrom(t *testing.T) {
	Convey("Given two ValueTables of matching shape", t, func() {
		src := sample.NewValueTable(2, 2, 0)
		dst := sample.NewValueTable(2, 2, 0)
		c := sample.Coord{X: 0, Y: 1, VXI: 2, VYI: 3}
		src.Set(c, 7)

		Convey("CopyParamsFrom makes dst match src everywhere, including untouched cells", func() {
			dst.CopyParamsFrom(src)
			So(dst.Get(c), ShouldEqual, 7)
			So(dst.Get(sample.Coord{X: 1, Y: 0, VXI: 0, VYI: 0}), ShouldEqual, 0)
		})
	})
}

func TestValueTableSaveLoadState(t *testing.T) {
	Convey("Given a ValueTable with some cells modified", t, func() {
		vt := sample.NewValueTable(2, 2, 0)
		c := sample.Coord{X: 1, Y: 1, VXI: 5, VYI: 6}
		vt.Set(c, 3.25)

		path := filepath.Join(t.TempDir(), "values.state")

		Convey("SaveState then LoadState into a fresh table round-trips every cell", func() {
			So(vt.SaveState(path), ShouldBeNil)

			loaded := sample.NewValueTable(2, 2, -1)
			So(loaded.LoadState(path), ShouldBeNil)
			So(loaded.Get(c), ShouldEqual, 3.25)
			So(loaded.Get(sample.Coord{X: 0, Y: 0, VXI: 0, VYI: 0}), ShouldEqual, 0)
		})

		Convey("LoadState from a nonexistent path fails", func() {
			loaded := sample.NewValueTable(2, 2, 0)
			err := loaded.LoadState(filepath.Join(t.TempDir(), "missing.state"))
			So(err, ShouldNotBeNil)
		})
	})
}
