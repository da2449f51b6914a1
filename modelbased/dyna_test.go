package modelbased

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"rlharness/episode"
	"rlharness/learning"
	"rlharness/model"
	"rlharness/selector"
	"rlharness/worldimpl"
)

func buildRealEpisode(grid *worldimpl.GridWorld, steps int) *episode.Episode {
	grid.Reset()
	state := grid.InitialState()

	ep := episode.New(len(state)+2, grid.NumActions(), nil)
	ep.AddState(state)
	ep.AddValues(make([]float64, len(state)+2))

	for i := 0; i < steps; i++ {
		action := i % grid.NumActions()
		finished, reward, next := grid.Step(action)
		ep.AddAction(action)
		ep.AddReward(reward)
		ep.AddState(next)
		ep.AddValues(make([]float64, len(state)+2))
		if finished {
			break
		}
	}
	return ep
}

func TestDynaModelValuesTrainsOnRollouts(t *testing.T) {
	Convey("Given a DynaModel over a gridworld with table-backed world and value models", t, func() {
		grid := worldimpl.NewGridWorld(10, 5, worldimpl.Point{X: 0, Y: 2}, worldimpl.Point{X: 5, Y: 2}, worldimpl.Point{X: 9, Y: 2}, false)
		worldModel := model.NewTable()
		valueModel := model.NewTable()
		sel := selector.NewEGreedy(learning.NewQLearning(0.9, 0.0, 0.3), 0.2)

		dyna := NewDynaModel(grid, worldModel, valueModel, sel, 5, 4, nil)

		realEpisode := buildRealEpisode(grid, 3)

		Convey("Values runs rollouts and returns a value-sized tuple without panicking", func() {
			values := dyna.Values(realEpisode)
			So(len(values), ShouldEqual, realEpisode.ValueSize())
		})

		Convey("Learn trains both inner models without error", func() {
			dyna.Learn([]*episode.Episode{realEpisode})
			dyna.SwapModels()
			So(func() { dyna.Values(realEpisode) }, ShouldNotPanic)
		})
	})
}
