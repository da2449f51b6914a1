package config

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"rlharness/model"
	"rlharness/modelbased"
)

func TestTokenPipelineBuildsGridQLearningEGreedy(t *testing.T) {
	Convey("Given the token sequence for a plain gridworld/table/qlearning/egreedy run", t, func() {
		p := NewTokenPipeline()
		err := p.Process([]string{"gridworld", "table", "qlearning", "egreedy"})
		So(err, ShouldBeNil)

		Convey("Finish assembles a world, a Table model and an EGreedy selector", func() {
			world, m, sel, err := p.Build.Finish(nil)
			So(err, ShouldBeNil)
			So(world, ShouldNotBeNil)
			So(sel, ShouldNotBeNil)
			_, isTable := m.(*model.Table)
			So(isTable, ShouldBeTrue)
		})
	})
}

func TestTokenPipelineDynaWrapsValueModel(t *testing.T) {
	Convey("Given the token sequence for gridworld/table/qlearning/egreedy/dyna", t, func() {
		p := NewTokenPipeline()
		err := p.Process([]string{"gridworld", "table", "qlearning", "egreedy", "dyna"})
		So(err, ShouldBeNil)

		Convey("Finish assembles a DynaModel instead of a bare value model", func() {
			_, m, _, err := p.Build.Finish(nil)
			So(err, ShouldBeNil)
			_, isDyna := m.(*modelbased.DynaModel)
			So(isDyna, ShouldBeTrue)
		})
	})
}

func TestTokenPipelineRejectsSelectorBeforeLearner(t *testing.T) {
	Convey("Given egreedy applied before any learner token", t, func() {
		p := NewTokenPipeline()
		err := p.Process([]string{"gridworld", "egreedy"})

		Convey("Process reports a configuration error", func() {
			So(err, ShouldNotBeNil)
		})
	})
}

func TestTokenPipelineTmazeSetsTrainingDefaults(t *testing.T) {
	Convey("Given the tmaze token", t, func() {
		p := NewTokenPipeline()
		err := p.Process([]string{"tmaze"})
		So(err, ShouldBeNil)

		Convey("NumEpisodes and DiscountFactor take the tmaze-specific defaults", func() {
			So(p.Build.HP.NumEpisodes, ShouldEqual, 50000)
			So(p.Build.HP.DiscountFactor, ShouldEqual, 0.98)
		})
	})
}

func TestTokenPipelineMissingWorldIsAConfigError(t *testing.T) {
	Convey("Given no tokens at all", t, func() {
		p := NewTokenPipeline()

		Convey("Finish reports a missing-world configuration error", func() {
			_, _, _, err := p.Build.Finish(nil)
			So(err, ShouldNotBeNil)
		})
	})
}
