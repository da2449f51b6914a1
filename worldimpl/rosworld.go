package worldimpl

import "rlharness/worldapi"

// Publisher emits a value on some external channel (a message-bus topic, a
// robot actuator, ...). ROSWorld is transport-agnostic: anything satisfying
// Publisher can back an action.
type Publisher interface {
	Publish(value float64)
}

// Producer is a Publisher together with the discrete set of values it can
// emit. Each value of each Producer is one action, publishing that value on
// that Producer alone; the action set lists every Producer's values in turn,
// in the order the Producers are given.
type Producer struct {
	Publisher Publisher
	Values    []float64
}

// Subscription delivers observations from an external source. ROSWorld reads
// exactly one value per Step from each subscription's channel; the last
// subscription in the list is read as the reward signal rather than a state
// coordinate.
type Subscription struct {
	Updates <-chan float64
}

// ROSWorld adapts an external, message-driven process (a simulator or a real
// robot) into a World: actions publish a value, and the successor
// observation is whatever values arrive on the configured subscriptions.
// Reset is a no-op — ROSWorld has no notion of restarting the external
// process, so the first InitialState of a new episode is simply the last
// observed state of the previous one.
type ROSWorld struct {
	subs    []Subscription
	actions []rosAction
	state   []float64
}

type rosAction struct {
	producer *Producer
	value    float64
}

// NewROSWorld builds a ROSWorld from its subscriptions (one state coordinate
// each, with the final subscription feeding the reward) and producers (whose
// values enumerate the action set).
func NewROSWorld(subs []Subscription, producers []*Producer) *ROSWorld {
	var actions []rosAction
	for _, p := range producers {
		for _, v := range p.Values {
			actions = append(actions, rosAction{producer: p, value: v})
		}
	}
	return &ROSWorld{
		subs:    subs,
		actions: actions,
		state:   make([]float64, len(subs)),
	}
}

func (w *ROSWorld) NumActions() int { return len(w.actions) }

func (w *ROSWorld) Reset() {}

func (w *ROSWorld) InitialState() []float64 {
	return append([]float64(nil), w.state[:len(w.state)-1]...)
}

func (w *ROSWorld) Step(action int) (finished bool, reward float64, state []float64) {
	a := w.actions[action]
	a.producer.Publisher.Publish(a.value)

	for i, sub := range w.subs {
		w.state[i] = <-sub.Updates
	}

	last := len(w.state) - 1
	state = append([]float64(nil), w.state[:last]...)
	reward = w.state[last]
	finished = false
	return
}

func (w *ROSWorld) StepSupervised(action int, targetState []float64, reward float64) {
	worldapi.StepSupervisedDefault(w, action)
}
