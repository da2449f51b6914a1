package model

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"rlharness/episode"
)

func buildTwoStepEpisode() *episode.Episode {
	ep := episode.New(2, 2, nil)
	ep.AddState([]float64{0, 0})
	ep.AddValues([]float64{0, 0})
	ep.AddAction(0)
	ep.AddReward(1)
	ep.AddState([]float64{1, 0})
	ep.AddValues([]float64{3, 4})
	return ep
}

func TestTableUnseenState(t *testing.T) {
	Convey("An unseen state returns zeroed values sized to the episode's valueSize", t, func() {
		table := NewTable()
		ep := buildTwoStepEpisode()
		So(table.Values(ep), ShouldResemble, []float64{0, 0})
	})
}

func TestTableLearnAndSwap(t *testing.T) {
	Convey("Given a Table trained on one episode", t, func() {
		table := NewTable()
		ep := buildTwoStepEpisode()

		table.Learn([]*episode.Episode{ep})

		Convey("Values are unchanged until SwapModels publishes the learning table", func() {
			So(table.Values(ep), ShouldResemble, []float64{0, 0})
			table.SwapModels()
			queryEp := episode.New(2, 2, nil)
			queryEp.AddState([]float64{0, 0})
			queryEp.AddValues([]float64{0, 0})
			// The first sighting of a state stores its whole value tuple
			// verbatim, as recorded at that timestep.
			So(table.Values(queryEp), ShouldResemble, []float64{0, 0})
		})
	})
}

func TestTableLearnUpdatesOnlyTakenAction(t *testing.T) {
	Convey("Given a Table that has already seen a state", t, func() {
		table := NewTable()
		first := buildTwoStepEpisode()
		table.Learn([]*episode.Episode{first})
		table.SwapModels()

		Convey("Learning again with a different action-0 value only changes that action's slot", func() {
			second := episode.New(2, 2, nil)
			second.AddState([]float64{0, 0})
			second.AddValues([]float64{9, 9})
			second.AddAction(0)
			second.AddReward(1)
			second.AddState([]float64{1, 0})
			second.AddValues([]float64{0, 0})

			table.Learn([]*episode.Episode{second})
			table.SwapModels()

			query := episode.New(2, 2, nil)
			query.AddState([]float64{0, 0})
			query.AddValues([]float64{0, 0})
			So(table.Values(query), ShouldResemble, []float64{9, 0})
		})
	})
}
