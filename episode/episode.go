// Package episode implements the columnar trajectory store shared by every
// World/Model/Learning-rule/Selector in this harness: a time-indexed record
// of states, actions, rewards and per-step value tuples, stored as flat
// row-major arrays rather than a slice of step structs (locality matters for
// batched matrix construction during training).
package episode

// Encoder transforms a raw state into the representation a Model actually
// consumes (normalization, one-hot expansion, ...). A nil Encoder is the
// identity transform.
type Encoder func(state []float64) []float64

// Episode is the columnar history of one trajectory: states, actions,
// rewards and value tuples, appended in lock-step as the agent steps through
// the world. Exactly one addState precedes the first AddValues call, and
// thereafter (action, reward, state, values) are appended per step in that
// order, so states and values hold Length() entries while actions and
// rewards hold one fewer.
type Episode struct {
	states  []float64
	values  []float64
	rewards []float64
	actions []int

	encoder Encoder

	stateSize int
	valueSize int
	numAction int
	aborted   bool
}

// New returns an empty episode. valueSize must be >= numActions; some
// learners append bookkeeping slots (e.g. a per-step temperature) beyond the
// per-action values.
func New(valueSize, numActions int, encoder Encoder) *Episode {
	return &Episode{
		encoder:   encoder,
		valueSize: valueSize,
		numAction: numActions,
	}
}

// AddState appends a state. The length of state fixes stateSize on the
// first call; subsequent calls must agree or AddState panics (contract
// violation — a programming error, not a recoverable condition).
func (e *Episode) AddState(state []float64) {
	if e.stateSize == 0 {
		e.stateSize = len(state)
	} else if len(state) != e.stateSize {
		panic("episode: state size changed mid-episode")
	}
	e.states = append(e.states, state...)
}

// AddValues appends a per-step value tuple of length valueSize.
func (e *Episode) AddValues(values []float64) {
	if len(values) != e.valueSize {
		panic("episode: value tuple has wrong size")
	}
	e.values = append(e.values, values...)
}

// AddReward appends a reward.
func (e *Episode) AddReward(reward float64) {
	e.rewards = append(e.rewards, reward)
}

// AddAction appends an action.
func (e *Episode) AddAction(action int) {
	e.actions = append(e.actions, action)
}

// SetAborted records whether the episode ended by hitting the step cap
// rather than a terminal transition.
func (e *Episode) SetAborted(aborted bool) {
	e.aborted = aborted
}

// WasAborted reports the value most recently passed to SetAborted (false
// if it was never called).
func (e *Episode) WasAborted() bool {
	return e.aborted
}

// StateSize is the number of floats in an unencoded state observation.
func (e *Episode) StateSize() int {
	return e.stateSize
}

// EncodedStateSize is computed lazily by encoding the first stored state.
func (e *Episode) EncodedStateSize() int {
	if e.Length() == 0 {
		return e.stateSize
	}
	return len(e.EncodedState(0))
}

// ValueSize is the number of floats in a values tuple.
func (e *Episode) ValueSize() int {
	return e.valueSize
}

// NumActions is the number of actions for which values are stored.
func (e *Episode) NumActions() int {
	return e.numAction
}

// Length is the number of observations in this episode.
func (e *Episode) Length() int {
	if e.stateSize == 0 {
		return 0
	}
	return len(e.states) / e.stateSize
}

// State returns a copy of the observation at time t, unencoded. Reading at
// t >= Length() is a programming error.
func (e *Episode) State(t int) []float64 {
	return extract(e.states, e.stateSize, t)
}

// EncodedState returns the observation at time t run through this episode's
// Encoder (identity if none was supplied).
func (e *Episode) EncodedState(t int) []float64 {
	s := e.State(t)
	if e.encoder == nil {
		return s
	}
	return e.encoder(s)
}

// Values returns a copy of the value tuple at time t.
func (e *Episode) Values(t int) []float64 {
	return extract(e.values, e.valueSize, t)
}

// UpdateValue sets values(t)[action] = value exactly.
func (e *Episode) UpdateValue(t, action int, value float64) {
	e.values[t*e.valueSize+action] = value
}

// Reward returns the reward recorded at time t.
func (e *Episode) Reward(t int) float64 {
	return e.rewards[t]
}

// CumulativeReward is the sum of all recorded rewards.
func (e *Episode) CumulativeReward() float64 {
	total := 0.0
	for _, r := range e.rewards {
		total += r
	}
	return total
}

// Action returns the action taken at time t.
func (e *Episode) Action(t int) int {
	return e.actions[t]
}

// Clone returns a deep copy of the episode, used to seed a rollout without
// the rollout's subsequent appends affecting the original.
func (e *Episode) Clone() *Episode {
	clone := &Episode{
		states:    append([]float64(nil), e.states...),
		values:    append([]float64(nil), e.values...),
		rewards:   append([]float64(nil), e.rewards...),
		actions:   append([]int(nil), e.actions...),
		encoder:   e.encoder,
		stateSize: e.stateSize,
		valueSize: e.valueSize,
		numAction: e.numAction,
		aborted:   e.aborted,
	}
	return clone
}

func extract(vec []float64, size, t int) []float64 {
	from := t * size
	out := make([]float64, size)
	copy(out, vec[from:from+size])
	return out
}
