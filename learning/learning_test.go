package learning

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"rlharness/episode"
)

func buildEpisode() *episode.Episode {
	ep := episode.New(2, 2, nil)
	ep.AddState([]float64{0})
	ep.AddValues([]float64{0, 0})
	ep.AddAction(0)
	ep.AddReward(1)
	ep.AddState([]float64{1})
	ep.AddValues([]float64{5, 2})
	return ep
}

func TestQLearning(t *testing.T) {
	Convey("Given a QLearning rule and a two-step episode", t, func() {
		q := NewQLearning(0.9, 0.9, 0.5)
		ep := buildEpisode()

		Convey("Learn moves the taken action's value toward reward + discounted max successor value", func() {
			tdErr := q.Learn(ep)
			// target = 1 + 0.9*5 - 0 = 5.5; new value = 0 + 0.5*5.5 = 2.75
			So(tdErr, ShouldEqual, 5.5)
			So(ep.Values(0)[0], ShouldEqual, 2.75)
		})

		Convey("A single-step episode yields zero TD error and no update", func() {
			single := episode.New(2, 2, nil)
			single.AddState([]float64{0})
			single.AddValues([]float64{3, 4})
			So(q.Learn(single), ShouldEqual, 0.0)
		})
	})
}

func TestAdvantageLearning(t *testing.T) {
	Convey("Given an AdvantageLearning rule with kappa=1, it matches QLearning", t, func() {
		a := NewAdvantageLearning(0.9, 0.9, 0.5, 1.0)
		epA := buildEpisode()
		q := NewQLearning(0.9, 0.9, 0.5)
		epQ := buildEpisode()

		tdA := a.Learn(epA)
		tdQ := q.Learn(epQ)

		So(tdA, ShouldEqual, tdQ)
		So(epA.Values(0)[0], ShouldEqual, epQ.Values(0)[0])
	})
}
