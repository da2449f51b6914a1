package worldapi

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestIntegratorDeviceWorld(t *testing.T) {
	Convey("Given a base world with one action wrapped in an Integrator(0,2)", t, func() {
		base := &stubWorld{actions: 1, state: []float64{7}}
		w := NewDeviceWorld(base, NewIntegrator(0, 2))

		Convey("NumActions adds the device's actions to the base's", func() {
			So(w.NumActions(), ShouldEqual, 3)
		})

		w.Reset()
		state := w.InitialState()

		Convey("InitialState appends the counter, starting at 0", func() {
			So(state, ShouldResemble, []float64{7, 0})
		})

		Convey("Incrementing past the ceiling costs -2 and the counter holds", func() {
			_, r1, s1 := w.Step(1) // device action 0: +1
			So(r1, ShouldEqual, -1.0)
			So(s1, ShouldResemble, []float64{7, 1})

			_, r2, s2 := w.Step(1) // +1 again -> 2 (== max)
			So(r2, ShouldEqual, -1.0)
			So(s2, ShouldResemble, []float64{7, 2})

			_, r3, s3 := w.Step(1) // +1 again, blocked by ceiling
			So(r3, ShouldEqual, -2.0)
			So(s3, ShouldResemble, []float64{7, 2})
		})

		Convey("Base actions pass through and refresh the cached base state", func() {
			finished, reward, s := w.Step(0)
			So(finished, ShouldBeFalse)
			So(reward, ShouldEqual, -1.0)
			So(s, ShouldResemble, []float64{7, 0})
		})
	})
}

func TestFreezeDeviceWorld(t *testing.T) {
	Convey("Given a base world with one action wrapped in a Freeze", t, func() {
		base := &stubWorld{actions: 1, state: []float64{3, 4}}
		w := NewDeviceWorld(base, NewFreeze())

		w.Reset()
		state := w.InitialState()

		Convey("InitialState appends a snapshot equal to the base's initial state", func() {
			So(state, ShouldResemble, []float64{3, 4, 3, 4})
		})

		Convey("Freezing costs -1 and copies the last observed base state", func() {
			_, reward, s := w.Step(1) // device action 0: freeze
			So(reward, ShouldEqual, -1.0)
			So(s, ShouldResemble, []float64{3, 4, 3, 4})
		})
	})
}
