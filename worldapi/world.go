// Package worldapi defines the World contract: a stateful, episodic
// environment that observes states and rewards for a fixed number of
// discrete actions. Concrete worlds live in worldimpl; wrapper worlds that
// compose a World (post-processing observations, adding device actions)
// live alongside this interface since they only depend on it.
package worldapi

// World is a stateful episodic environment. Implementations own their own
// simulation state. NumActions is fixed at construction. Out-of-range
// actions are undefined behavior: callers must honor NumActions.
type World interface {
	// NumActions is the number of discrete actions this world accepts.
	NumActions() int

	// Reset begins a new episode. Must be called before InitialState.
	Reset()

	// InitialState returns the state the agent observes first.
	InitialState() []float64

	// Step applies action, returning whether the episode terminated, the
	// reward received and the successor state.
	Step(action int) (finished bool, reward float64, state []float64)

	// StepSupervised drives the world to a known successor state instead of
	// its own sample, used when replaying a recorded episode against a
	// stochastic or model-approximated world. Worlds that cannot be set to
	// a given state may fall back to StepSupervisedDefault (ROSWorld does).
	StepSupervised(action int, targetState []float64, reward float64)
}

// StepSupervisedDefault implements the World.StepSupervised default
// behavior described in spec §4.2: call Step and discard its outputs.
func StepSupervisedDefault(w World, action int) {
	_, _, _ = w.Step(action)
}
