package agent

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"rlharness/episode"
	"rlharness/learning"
	"rlharness/model"
	"rlharness/selector"
	"rlharness/worldimpl"
)

func TestAgentRunEpisode(t *testing.T) {
	Convey("Given an agent over a gridworld with a table model and egreedy selector", t, func() {
		world := worldimpl.NewGridWorld(10, 5, worldimpl.Point{X: 0, Y: 2}, worldimpl.Point{X: 5, Y: 2}, worldimpl.Point{X: 9, Y: 2}, false)
		m := model.NewTable()
		sel := selector.NewEGreedy(learning.NewQLearning(0.9, 0.0, 0.3), 0.2)

		a := New(world, m, sel, nil, 200, 10)

		Convey("An episode terminates, and its columnar arrays agree in length", func() {
			ep := a.RunEpisode(nil)

			So(ep.Length(), ShouldBeGreaterThan, 1)
			So(ep.Length()*2, ShouldEqual, len(statesOf(ep)))
		})

		Convey("Min/Max state tracking widens as the agent explores", func() {
			a.RunEpisode(nil)
			So(a.Min, ShouldNotBeNil)
			So(a.Max, ShouldNotBeNil)
			for i := range a.Min {
				So(a.Min[i], ShouldBeLessThanOrEqualTo, a.Max[i])
			}
		})
	})
}

func statesOf(ep *episode.Episode) []float64 {
	out := make([]float64, 0, ep.Length()*ep.StateSize())
	for t := 0; t < ep.Length(); t++ {
		out = append(out, ep.State(t)...)
	}
	return out
}

func TestAgentTrainBatchesEpisodes(t *testing.T) {
	Convey("Given an agent with batch size 3", t, func() {
		world := worldimpl.NewGridWorld(10, 5, worldimpl.Point{X: 0, Y: 2}, worldimpl.Point{X: 5, Y: 2}, worldimpl.Point{X: 9, Y: 2}, false)
		m := model.NewTable()
		sel := selector.NewEGreedy(learning.NewQLearning(0.9, 0.0, 0.3), 0.2)

		a := New(world, m, sel, nil, 50, 3)

		seen := 0
		a.Progress = func(i int, ep *episode.Episode) { seen++ }

		Convey("Progress is called once per episode across several batches", func() {
			a.Train(7)
			So(seen, ShouldEqual, 7)
		})
	})
}
