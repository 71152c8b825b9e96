package source

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestOptions(t *testing.T) {
	Convey("Given the default source options", t, func() {
		o := defaultOptions()

		Convey("Then HTTP fetches carry no deadline", func() {
			So(o.timeout, ShouldEqual, time.Duration(0))
		})

		Convey("When a non-positive timeout is applied", func() {
			WithTimeout(-time.Second)(&o)
			So(o.timeout, ShouldEqual, time.Duration(0))
		})

		Convey("When a positive timeout is applied", func() {
			WithTimeout(2 * time.Second)(&o)
			So(o.timeout, ShouldEqual, 2*time.Second)
		})
	})
}
