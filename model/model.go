// Package model implements the function approximators that predict action
// values from an episode's history: a dictionary lookup for discrete
// problems, an incremental Gaussian mixture and a feedforward network for
// continuous ones.
package model

import "rlharness/episode"

// Model associates episode histories with action values. Unlike a Learning
// rule, a Model owns no notion of reward or discounting — it only predicts
// and is trained on whatever value targets the agent loop already computed.
type Model interface {
	// Values returns the predicted action values for ep's most recent state.
	Values(ep *episode.Episode) []float64

	// Learn updates the model from a batch of episodes.
	Learn(episodes []*episode.Episode)

	// NextEpisode resets any per-episode state (a time-step counter, a
	// recurrent hidden state) before the next episode's first prediction.
	NextEpisode()
}

// ValuesForPlotting is a faster variant of Values used only when sampling a
// model's value surface for diagnostics: models that keep bookkeeping state
// in Values (counters, hidden state advances) can override this to skip it.
type ValuesForPlotting interface {
	ValuesForPlotting(ep *episode.Episode) []float64
}

// PlotValues calls m.ValuesForPlotting(ep) if m implements it, or falls back
// to m.Values(ep).
func PlotValues(m Model, ep *episode.Episode) []float64 {
	if vp, ok := m.(ValuesForPlotting); ok {
		return vp.ValuesForPlotting(ep)
	}
	return m.Values(ep)
}

// Swappable is implemented by models that train into a separate buffer and
// only publish it on demand (Table, and the double-buffered models used by
// TEXPLORE's concurrent learners) so a reader never observes a half-written
// update.
type Swappable interface {
	SwapModels()
}
