package modelbased

import (
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"rlharness/episode"
	"rlharness/model"
	"rlharness/worldapi"
	"rlharness/worldimpl"
)

// runRandomEpisode drives w with uniformly random actions for up to maxSteps
// steps, recording a plain (state-only-valued) episode suitable for feeding
// to ModelWorld.Learn.
func runRandomEpisode(w worldapi.World, maxSteps int) *episode.Episode {
	w.Reset()
	state := w.InitialState()

	ep := episode.New(len(state)+2, w.NumActions(), nil)
	ep.AddState(state)
	ep.AddValues(make([]float64, len(state)+2))

	finished := false
	for t := 0; t < maxSteps && !finished; t++ {
		action := rand.Intn(w.NumActions())
		var reward float64
		var next []float64
		finished, reward, next = w.Step(action)

		ep.AddAction(action)
		ep.AddReward(reward)
		ep.AddState(next)
		ep.AddValues(make([]float64, len(state)+2))
	}
	ep.SetAborted(!finished)
	return ep
}

func TestModelWorldRoundTripsOnATableBackedPredictor(t *testing.T) {
	Convey("Given a gridworld driving a Table-backed ModelWorld", t, func() {
		grid := worldimpl.NewGridWorld(10, 5, worldimpl.Point{X: 0, Y: 2}, worldimpl.Point{X: 5, Y: 2}, worldimpl.Point{X: 9, Y: 2}, false)
		table := model.NewTable()
		mw := NewModelWorld(grid, table)

		Convey("Training on 50 real episodes then replaying visited transitions reproduces them exactly", func() {
			episodes := make([]*episode.Episode, 50)
			for i := range episodes {
				episodes[i] = runRandomEpisode(grid, 20)
			}

			mw.Learn(episodes)
			mw.SwapModels()

			for _, ep := range episodes {
				mw.Reset()
				for t := 0; t < ep.Length()-1; t++ {
					action := ep.Action(t)
					wantState := ep.State(t + 1)
					wantReward := ep.Reward(t)

					_, gotReward, gotState := mw.Step(action)

					So(gotState, ShouldResemble, wantState)
					So(gotReward, ShouldAlmostEqual, wantReward, 1e-9)
				}
			}
		})
	})
}
