package model

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGaussianMixtureSpawnsOnFirstPoint(t *testing.T) {
	Convey("Given an empty mixture", t, func() {
		g := NewGaussianMixture(1.0, 0.1)
		So(g.NumberOfClusters(), ShouldEqual, 0)

		Convey("The first SetValue spawns exactly one cluster", func() {
			g.SetValue([]float64{0, 0}, 5.0)
			So(g.NumberOfClusters(), ShouldEqual, 1)
		})
	})
}

func TestGaussianMixtureReusesNearbyCluster(t *testing.T) {
	Convey("Given a mixture already seeded near the origin", t, func() {
		g := NewGaussianMixture(1.0, 0.01)
		g.SetValue([]float64{0, 0}, 1.0)

		Convey("A nearby point reuses the cluster instead of spawning a new one", func() {
			g.SetValue([]float64{0.1, 0.1}, 2.0)
			So(g.NumberOfClusters(), ShouldEqual, 1)
		})

		Convey("A distant point with a tight novelty threshold spawns a new cluster", func() {
			g.SetValue([]float64{50, 50}, 2.0)
			So(g.NumberOfClusters(), ShouldEqual, 2)
		})
	})
}

func TestGaussianMixtureValueNearSeed(t *testing.T) {
	Convey("Given a mixture seeded at the origin with value 7", t, func() {
		g := NewGaussianMixture(1.0, 0.1)
		g.SetValue([]float64{0, 0}, 7.0)

		Convey("Value at the seed point is close to the seeded value", func() {
			v := g.Value([]float64{0, 0})
			So(v, ShouldAlmostEqual, 7.0, 1e-6)
		})
	})
}
