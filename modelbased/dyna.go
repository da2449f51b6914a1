package modelbased

import (
	"rlharness/agent"
	"rlharness/episode"
	"rlharness/model"
	"rlharness/selector"
	"rlharness/worldapi"
)

// DynaModel wraps a value model with planning: before answering a values
// query it runs NumRollouts rollout episodes of up to RolloutLength steps
// through an internal ModelWorld (a learned approximation of the real
// world), each seeded at the real agent's current position, training the
// value model on the simulated experience before finally answering from it.
type DynaModel struct {
	modelWorld   *ModelWorld
	valueModel   model.Model
	rolloutAgent *agent.Agent

	numRollouts int
}

// NewDynaModel builds a DynaModel. realWorld supplies NumActions and the
// initial state used to seed rollouts; worldModel is trained to approximate
// realWorld's transitions; valueModel is the model DynaModel ultimately
// answers Values from, trained on both real batches and simulated rollouts;
// sel drives action selection during rollouts.
func NewDynaModel(realWorld worldapi.World, worldModel, valueModel model.Model, sel selector.Selector, rolloutLength, numRollouts int, encoder episode.Encoder) *DynaModel {
	mw := NewModelWorld(realWorld, worldModel)
	return &DynaModel{
		modelWorld:   mw,
		valueModel:   valueModel,
		rolloutAgent: agent.New(mw, valueModel, sel, encoder, rolloutLength, 0),
		numRollouts:  numRollouts,
	}
}

// Values runs NumRollouts rollouts seeded at ep's current position, trains
// the value model on them in one batch, and returns its prediction for ep.
func (d *DynaModel) Values(ep *episode.Episode) []float64 {
	rollouts := make([]*episode.Episode, d.numRollouts)
	for i := 0; i < d.numRollouts; i++ {
		rollouts[i] = d.rolloutAgent.RunEpisode(ep)
	}
	d.valueModel.Learn(rollouts)
	if s, ok := d.valueModel.(model.Swappable); ok {
		s.SwapModels()
	}

	return d.valueModel.Values(ep)
}

// ValuesForPlotting skips the rollout/training pass, answering straight from
// the value model: used only when densely sampling a value surface for
// diagnostics, where re-planning at every sample point would be wasteful.
func (d *DynaModel) ValuesForPlotting(ep *episode.Episode) []float64 {
	return model.PlotValues(d.valueModel, ep)
}

// Learn trains both the value model and the world model on a batch of real
// episodes.
func (d *DynaModel) Learn(episodes []*episode.Episode) {
	d.valueModel.Learn(episodes)
	d.modelWorld.Learn(episodes)
}

// NextEpisode resets the value model's per-episode state.
func (d *DynaModel) NextEpisode() {
	d.valueModel.NextEpisode()
}

// SwapModels publishes both the value model's and the world model's trained
// buffers, for either that supports double-buffering.
func (d *DynaModel) SwapModels() {
	if s, ok := d.valueModel.(model.Swappable); ok {
		s.SwapModels()
	}
	d.modelWorld.SwapModels()
}
