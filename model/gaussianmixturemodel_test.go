package model

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"rlharness/episode"
)

func buildGaussianEpisode(states [][]float64, actions []int, values [][]float64) *episode.Episode {
	ep := episode.New(len(values[0]), len(values[0]), nil)
	ep.AddState(states[0])
	ep.AddValues(values[0])
	for i, a := range actions {
		ep.AddAction(a)
		ep.AddReward(0)
		ep.AddState(states[i+1])
		ep.AddValues(values[i+1])
	}
	return ep
}

func TestGaussianMixtureModelUntrainedReturnsZeroVector(t *testing.T) {
	Convey("Given a fresh GaussianMixtureModel and an episode with one recorded state", t, func() {
		g := NewGaussianMixtureModel(1.0, 0.1, 0.05)
		ep := episode.New(2, 2, nil)
		ep.AddState([]float64{0, 0})

		Convey("Values returns a zero vector of value_size", func() {
			values := g.Values(ep)
			So(values, ShouldResemble, []float64{0, 0})
		})
	})
}

func TestGaussianMixtureModelLearnAccumulatesAcrossCalls(t *testing.T) {
	Convey("Given a GaussianMixtureModel trained in two separate batches", t, func() {
		g := NewGaussianMixtureModel(0.25, 0.2, 0.01)

		first := buildGaussianEpisode(
			[][]float64{{0, 0}, {1, 1}},
			[]int{0},
			[][]float64{{0, 0}, {0, 0}},
		)
		g.Learn([]*episode.Episode{first})
		g.SwapModels()
		So(g.mixtures[0].NumberOfClusters(), ShouldEqual, 1)

		second := buildGaussianEpisode(
			[][]float64{{5, 5}, {6, 6}},
			[]int{1},
			[][]float64{{0, 0}, {0, 0}},
		)

		Convey("Training a second batch on a different action keeps the first action's cluster", func() {
			g.Learn([]*episode.Episode{second})
			g.SwapModels()
			So(g.mixtures[0].NumberOfClusters(), ShouldEqual, 1)
			So(g.mixtures[1].NumberOfClusters(), ShouldEqual, 1)
		})
	})
}
