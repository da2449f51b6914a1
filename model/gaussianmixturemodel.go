package model

import (
	"math/rand"

	"rlharness/episode"
	"rlharness/nanguard"
)

// GaussianMixtureModel is the Model-interface adapter around GaussianMixture:
// one mixture per action, trained and predicted independently, double
// buffered the same way Table is so a concurrent reader never observes a
// partially retrained mixture. Per spec's numerical-hygiene design note,
// Learn perturbs every training input with isotropic Gaussian noise (inputs
// on noise-free discrete worlds would otherwise collapse every visit to the
// same cell onto one degenerate cluster) while Values never does.
type GaussianMixtureModel struct {
	VarInitial float64
	Novelty    float64
	NoiseSigma float64

	mixtures []*GaussianMixture
	learning []*GaussianMixture
}

// NewGaussianMixtureModel returns a GaussianMixtureModel. noiseSigma <= 0
// defaults to 0.05, per spec §9.
func NewGaussianMixtureModel(varInitial, novelty, noiseSigma float64) *GaussianMixtureModel {
	if noiseSigma <= 0 {
		noiseSigma = 0.05
	}
	return &GaussianMixtureModel{VarInitial: varInitial, Novelty: novelty, NoiseSigma: noiseSigma}
}

func (g *GaussianMixtureModel) ensureMixtures(numActions int) {
	if g.mixtures != nil {
		return
	}
	g.mixtures = make([]*GaussianMixture, numActions)
	for i := range g.mixtures {
		g.mixtures[i] = NewGaussianMixture(g.VarInitial, g.Novelty)
	}
}

func (g *GaussianMixtureModel) Values(ep *episode.Episode) []float64 {
	g.ensureMixtures(ep.NumActions())

	state := ep.EncodedState(ep.Length() - 1)
	out := make([]float64, ep.ValueSize())
	for a, m := range g.mixtures {
		out[a] = m.Value(state)
	}
	nanguard.Check("GaussianMixtureModel.Values", out)
	return out
}

func (g *GaussianMixtureModel) Learn(episodes []*episode.Episode) {
	if len(episodes) == 0 {
		return
	}
	g.ensureMixtures(episodes[0].NumActions())

	if g.learning == nil {
		g.learning = make([]*GaussianMixture, len(g.mixtures))
		for i, m := range g.mixtures {
			g.learning[i] = m.Clone()
		}
	}

	for _, ep := range episodes {
		for t := 0; t < ep.Length()-1; t++ {
			action := ep.Action(t)
			state := ep.EncodedState(t)
			values := ep.Values(t)

			noisy := make([]float64, len(state))
			for i, v := range state {
				noisy[i] = v + rand.NormFloat64()*g.NoiseSigma
			}
			g.learning[action].SetValue(noisy, values[action])
		}
	}
}

// SwapModels publishes the mixtures trained by the most recent Learn call.
func (g *GaussianMixtureModel) SwapModels() {
	if g.learning != nil {
		g.mixtures = g.learning
		g.learning = nil
	}
}

func (g *GaussianMixtureModel) NextEpisode() {}
