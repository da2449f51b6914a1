package worldapi

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type stubWorld struct {
	actions int
	state   []float64
}

func (s *stubWorld) NumActions() int       { return s.actions }
func (s *stubWorld) Reset()                {}
func (s *stubWorld) InitialState() []float64 {
	return append([]float64(nil), s.state...)
}
func (s *stubWorld) Step(action int) (bool, float64, []float64) {
	return false, -1, append([]float64(nil), s.state...)
}
func (s *stubWorld) StepSupervised(action int, targetState []float64, reward float64) {}

func TestOneHot(t *testing.T) {
	Convey("Given a OneHot over two coordinates ranging 0..9 and 0..4", t, func() {
		o := NewOneHot([]int{0, 0}, []int{9, 4})

		Convey("EncodedSize is the sum of per-coordinate widths", func() {
			So(o.EncodedSize(), ShouldEqual, 15)
		})

		Convey("Encoding [3,2] places 1.0 at indices 3 and 12 with zero elsewhere", func() {
			encoded := o.Process([]float64{3, 2})
			So(len(encoded), ShouldEqual, 15)
			So(encoded[3], ShouldEqual, 1.0)
			So(encoded[10+2], ShouldEqual, 1.0)

			// Integer-valued inputs land exactly on a cell, so neighbors
			// receive 0, not a partial activation.
			So(encoded[2], ShouldEqual, 0.0)
			So(encoded[4], ShouldEqual, 0.0)
		})
	})
}

func TestScale(t *testing.T) {
	Convey("Given a Scale with a zero weight on the second coordinate", t, func() {
		s := NewScale([]float64{1.0, 0.0})

		Convey("Process erases that coordinate and leaves the rest untouched", func() {
			out := s.Process([]float64{4, 5})
			So(out, ShouldResemble, []float64{4, 0})
		})

		Convey("Missing trailing weights default to 1.0", func() {
			short := NewScale([]float64{2.0})
			out := short.Process([]float64{3, 4})
			So(out, ShouldResemble, []float64{6, 4})
		})
	})
}

func TestPostProcessWorld(t *testing.T) {
	Convey("Given a stub world wrapped in a Scale post-processor", t, func() {
		inner := &stubWorld{actions: 2, state: []float64{1, 2}}
		w := NewPostProcessWorld(inner, NewScale([]float64{0, 1}))

		Convey("NumActions passes through unchanged", func() {
			So(w.NumActions(), ShouldEqual, 2)
		})

		Convey("InitialState and Step both apply the processor", func() {
			So(w.InitialState(), ShouldResemble, []float64{0, 2})
			_, _, state := w.Step(0)
			So(state, ShouldResemble, []float64{0, 2})
		})
	})
}
