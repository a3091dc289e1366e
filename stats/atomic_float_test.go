package stats

import (
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAtomicFloat64(t *testing.T) {
	Convey("Given an AtomicFloat64 starting at zero", t, func() {
		af := NewAtomicFloat64(0.0)

		Convey("Set overwrites the value", func() {
			ok := af.Set(3.5)
			So(ok, ShouldBeTrue)
			So(af.Read(), ShouldEqual, 3.5)
		})

		Convey("Many concurrent retrying adders sum exactly", func() {
			numOps := 2000
			numWriters := 50

			start := make(chan struct{})
			wg := sync.WaitGroup{}
			wg.Add(numWriters)
			adder := func() {
				<-start
				for i := 0; i < numOps; i++ {
					for succeeded := false; !succeeded; _, succeeded = af.Add(1.0) {
					}
				}
				wg.Done()
			}

			for i := 0; i < numWriters; i++ {
				go adder()
			}

			time.Sleep(10 * time.Millisecond)
			close(start)
			wg.Wait()

			So(af.Read(), ShouldEqual, float64(numOps*numWriters))
		})
	})
}
