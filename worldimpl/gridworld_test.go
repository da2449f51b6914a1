package worldimpl

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGridWorld(t *testing.T) {
	Convey("Given a 10x5 gridworld with a goal at (9,2) and an obstacle at (5,2)", t, func() {
		g := NewGridWorld(10, 5, Point{0, 2}, Point{5, 2}, Point{9, 2}, false)
		g.Reset()

		Convey("InitialState reports the starting coordinates", func() {
			So(g.InitialState(), ShouldResemble, []float64{0, 2})
		})

		Convey("Walking off the grid is rejected and costs -10", func() {
			finished, reward, state := g.Step(3) // Left, off the left edge from x=0
			So(finished, ShouldBeFalse)
			So(reward, ShouldEqual, -10.0)
			So(state, ShouldResemble, []float64{0, 2})
		})

		Convey("Walking into the obstacle is rejected and costs -10", func() {
			for i := 0; i < 5; i++ {
				g.Step(1) // Right, toward the obstacle at x=5
			}
			finished, reward, state := g.Step(1) // blocked by the obstacle
			So(finished, ShouldBeFalse)
			So(reward, ShouldEqual, -10.0)
			So(state, ShouldResemble, []float64{4, 2})
		})

		Convey("A direct run to the goal via x=9 ends with reward 10", func() {
			fresh := NewGridWorld(10, 5, Point{0, 0}, Point{5, 2}, Point{9, 0}, false)
			fresh.Reset()
			fresh.InitialState()

			var finished bool
			var reward float64
			for i := 0; i < 9; i++ {
				finished, reward, _ = fresh.Step(1) // Right
			}
			So(finished, ShouldBeTrue)
			So(reward, ShouldEqual, 10.0)
		})
	})
}

func TestGridWorldStochasticReset(t *testing.T) {
	Convey("Given a stochastic 10x5 gridworld", t, func() {
		g := NewGridWorld(10, 5, Point{0, 2}, Point{5, 2}, Point{9, 2}, true)

		Convey("InitialState always matches the cell Step actually moves from", func() {
			for i := 0; i < 20; i++ {
				g.Reset()
				start := g.InitialState()

				_, _, state := g.Step(1) // Right: either moves to (x+1,y), or is
				// rejected (wall/obstacle) and leaves the agent at (x,y) unchanged.

				dx := state[0] - start[0]
				So(state[1], ShouldEqual, start[1])
				So(dx == 0 || dx == 1, ShouldBeTrue)
			}
		})
	})
}

func TestTMazeWorld(t *testing.T) {
	Convey("Given a T-maze of length 8 with a 2-step hint window", t, func() {
		m := NewTMazeWorld(8, 2)
		m.Reset()
		m.target = 0 // force Up for a deterministic test

		Convey("The hint is visible during the info window and hidden after", func() {
			state := m.InitialState()
			So(state[0], ShouldEqual, 1.0) // target Up encodes as 1

			_, _, s1 := m.Step(3) // Right, timesteps=1, still within window
			So(s1[0], ShouldEqual, 1.0)

			_, _, s2 := m.Step(3) // timesteps=2, still within window (<=2)
			So(s2[0], ShouldEqual, 1.0)

			_, _, s3 := m.Step(3) // timesteps=3, past the window
			So(s3[0], ShouldEqual, 0.0)
		})

		Convey("Choosing the correct arm at the junction pays 10", func() {
			for i := 0; i < 7; i++ {
				m.Step(3) // Right, walking down the corridor to the junction x=7 (length-1)
			}
			finished, reward, _ := m.Step(0) // Up at the junction, matches target
			So(finished, ShouldBeTrue)
			So(reward, ShouldEqual, 10.0)
		})

		Convey("Choosing the wrong arm pays 0", func() {
			for i := 0; i < 7; i++ {
				m.Step(3)
			}
			finished, reward, _ := m.Step(1) // Down, wrong arm
			So(finished, ShouldBeTrue)
			So(reward, ShouldEqual, 0.0)
		})
	})
}

func TestPolarGridWorld(t *testing.T) {
	Convey("Given a polar gridworld facing Right initially", t, func() {
		p := NewPolarGridWorld(10, 5, Point{0, 2}, Point{5, 0}, Point{9, 4}, false)
		p.Reset()

		Convey("Distance ahead is to the right wall", func() {
			state := p.InitialState()
			So(state[0], ShouldEqual, 1.0) // direction Right
			So(state[1], ShouldEqual, 9.0) // 10 - 0 - 1
		})

		Convey("Turning costs -1 and does not move the agent", func() {
			finished, reward, state := p.Step(2) // TurnLeft -> facing Up
			So(finished, ShouldBeFalse)
			So(reward, ShouldEqual, -1.0)
			So(state[0], ShouldEqual, 0.0) // direction Up
			So(state[1], ShouldEqual, 2.0) // facing Up, distance is 5 - 2 - 1
		})
	})
}
