// Package modelbased implements model-based planning on top of the World/
// Model abstractions: a World whose transitions are produced by a trained
// Model (ModelWorld), and two wrappers that use rollouts through it to train
// a value model faster than direct experience allows (DynaModel, the
// sequential version, and TEXPLOREModel, the concurrent one).
package modelbased

import (
	"rlharness/episode"
	"rlharness/model"
	"rlharness/worldapi"
)

// ModelWorld is a World whose step is answered by a Model instead of a real
// simulation. The Model it drives predicts a tuple (delta_state_1, ...,
// delta_state_k, reward, finished_flag) of length state_size+2; the state it
// is queried on is the *pre-transition world state with the chosen action
// appended* (modelState), so that a per-(state,action) memoriser like Table
// gets a distinct key per action instead of aliasing distinct actions onto
// the same row — a row that Table.Learn only ever partially overwrites on
// repeat visits (see Table's action-indexed update rule).
type ModelWorld struct {
	real      worldapi.World
	predictor model.Model

	modelEpisode *episode.Episode
	worldState   []float64
}

// NewModelWorld returns a ModelWorld over real (consulted only for action
// count and initial state — predictor answers every Step) driven by
// predictor.
func NewModelWorld(real worldapi.World, predictor model.Model) *ModelWorld {
	return &ModelWorld{real: real, predictor: predictor}
}

func (m *ModelWorld) NumActions() int { return m.real.NumActions() }

// tupleSize is state_size+2: one delta per state dimension, a predicted
// reward, and a predicted finished flag.
func tupleSize(stateSize int) int { return stateSize + 2 }

// modelState concatenates the action onto state, so the underlying predictor
// sees a distinct input per (state, action) pair.
func modelState(state []float64, action int) []float64 {
	ms := make([]float64, len(state)+1)
	copy(ms, state)
	ms[len(state)] = float64(action)
	return ms
}

func (m *ModelWorld) Reset() {
	m.real.Reset()
	m.worldState = m.real.InitialState()
	m.predictor.NextEpisode()

	size := tupleSize(len(m.worldState))
	m.modelEpisode = episode.New(size, size, nil)
}

func (m *ModelWorld) InitialState() []float64 {
	return append([]float64(nil), m.worldState...)
}

// Step folds (worldState, action) into the model episode's next state entry,
// asks the predictor for the resulting tuple, and applies it as a delta to
// the current world state.
func (m *ModelWorld) Step(action int) (finished bool, reward float64, state []float64) {
	stateSize := len(m.worldState)

	m.modelEpisode.AddState(modelState(m.worldState, action))
	m.modelEpisode.AddAction(action)

	values := m.predictor.Values(m.modelEpisode)

	newState := make([]float64, stateSize)
	for i := range newState {
		newState[i] = m.worldState[i] + values[i]
	}
	reward = values[stateSize]
	finished = values[stateSize+1] >= 0.5

	m.worldState = newState
	m.modelEpisode.AddReward(reward)
	m.modelEpisode.AddValues(values)

	return finished, reward, append([]float64(nil), m.worldState...)
}

// StepSupervised appends a dummy tuple (only the reward slot populated) for
// the transition and then overwrites the internal world state to
// targetState, for replaying a real trajectory against the learned model
// instead of trusting its own predictions.
func (m *ModelWorld) StepSupervised(action int, targetState []float64, reward float64) {
	stateSize := len(m.worldState)
	size := tupleSize(stateSize)

	values := make([]float64, size)
	values[stateSize] = reward

	m.modelEpisode.AddState(modelState(m.worldState, action))
	m.modelEpisode.AddAction(action)
	m.modelEpisode.AddReward(reward)
	m.modelEpisode.AddValues(values)

	m.worldState = append([]float64(nil), targetState...)
}

// Learn trains the wrapped predictor on real episodes, reshaping each into a
// model episode whose state column is (pre-state, action) and whose value
// column is the actual (delta_state, reward, finished) observed at that
// transition. The finished target is 1.0 only when the real episode ended on
// a terminal transition, not a step-cap timeout: WasAborted distinguishes
// the two.
func (m *ModelWorld) Learn(realEpisodes []*episode.Episode) {
	derived := make([]*episode.Episode, 0, len(realEpisodes))

	for _, real := range realEpisodes {
		if real.Length() < 2 {
			continue
		}

		stateSize := real.StateSize()
		size := tupleSize(stateSize)
		d := episode.New(size, size, nil)

		for t := 0; t < real.Length()-1; t++ {
			action := real.Action(t)
			reward := real.Reward(t)
			before := real.State(t)
			after := real.State(t + 1)

			target := make([]float64, size)
			for i := 0; i < stateSize; i++ {
				target[i] = after[i] - before[i]
			}
			target[stateSize] = reward
			if t == real.Length()-2 && !real.WasAborted() {
				target[stateSize+1] = 1.0
			}

			d.AddState(modelState(before, action))
			d.AddAction(action)
			d.AddReward(reward)
			d.AddValues(target)
		}
		// One trailing state pads the states/values arrays to length
		// transitions+1, matching every other Episode producer in this
		// harness; Table.Learn (and any other Model.Learn) walks only up to
		// Length()-1, so without this pad the final transition of every
		// derived episode would silently never be trained on.
		d.AddState(modelState(real.State(real.Length()-1), 0))
		d.AddValues(make([]float64, size))
		d.SetAborted(real.WasAborted())

		derived = append(derived, d)
	}

	m.predictor.Learn(derived)
}

// SwapModels publishes the predictor's trained buffer, if it supports
// double-buffering.
func (m *ModelWorld) SwapModels() {
	if s, ok := m.predictor.(model.Swappable); ok {
		s.SwapModels()
	}
}
