// Package learning implements the temporal-difference rules that turn a
// recorded trajectory into updated action values: every rule reads an
// episode's already-predicted value tuples and writes corrected ones back in
// place, ready for a selector to turn into an action distribution.
package learning

import "rlharness/episode"

// Learning is a temporal-difference rule. It inspects (and updates in place)
// the value tuples an episode already carries, and reports the most recent
// TD error so a selector can use it to adapt exploration.
type Learning interface {
	// Learn corrects the value tuple(s) of ep affected by its latest step,
	// and returns the TD error of the most recent transition.
	Learn(ep *episode.Episode) (tdError float64)

	// ValueSize is the number of value slots this rule requires an episode
	// to carry per time step, given the world's action count. Most rules
	// need exactly numActions; AdaptiveSoftmax needs one more.
	ValueSize(numActions int) int
}

// TDBase implements the shared backward eligibility-trace sweep every
// concrete TD rule (QLearning, AdvantageLearning) is built on: walk backward
// from the newest transition, applying each step's TD error to its action
// value, decaying by the eligibility factor, and stopping once the trace
// becomes negligible.
type TDBase struct {
	DiscountFactor    float64
	EligibilityFactor float64
	LearningRate      float64

	// TDError computes the temporal-difference error for the transition
	// ending at timestep t (i.e. between t-1 and t). Supplied by QLearning
	// or AdvantageLearning.
	TDError func(ep *episode.Episode, t int) float64
}

func (b *TDBase) ValueSize(numActions int) int { return numActions }

// Learn runs the backward eligibility sweep described in spec and returns
// the TD error of the most recent transition.
func (b *TDBase) Learn(ep *episode.Episode) float64 {
	length := ep.Length()
	if length < 2 {
		return 0.0
	}

	eligibility := 1.0
	var tdError float64

	for currentT := length - 1; currentT > 0; currentT-- {
		lastAction := ep.Action(currentT - 1)

		err := b.TDError(ep, currentT)
		ep.UpdateValue(currentT-1, lastAction, ep.Values(currentT-1)[lastAction]+b.LearningRate*eligibility*err)

		if currentT == length-1 {
			tdError = err
		}

		eligibility *= b.EligibilityFactor
		if eligibility < 1e-2 {
			break
		}
	}

	return tdError
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// QLearning is the standard off-policy TD control rule: the target for the
// last action is the observed reward plus the discounted maximum over the
// successor's values.
type QLearning struct {
	*TDBase
}

// NewQLearning returns a QLearning rule with the given discount factor,
// eligibility-trace decay and learning rate.
func NewQLearning(discountFactor, eligibilityFactor, learningRate float64) *QLearning {
	q := &QLearning{}
	q.TDBase = &TDBase{
		DiscountFactor:    discountFactor,
		EligibilityFactor: eligibilityFactor,
		LearningRate:      learningRate,
		TDError:           q.tdError,
	}
	return q
}

func (q *QLearning) tdError(ep *episode.Episode, t int) float64 {
	lastAction := ep.Action(t - 1)
	lastReward := ep.Reward(t - 1)

	lastValues := ep.Values(t - 1)
	currentValues := ep.Values(t)

	current := lastValues[lastAction]
	return lastReward + q.DiscountFactor*maxOf(currentValues) - current
}

// AdvantageLearning biases the Q-value update toward separating the best
// action's value from the rest (Bakker, 2001); Kappa trades off bias
// strength against standard Q-learning (Kappa=1 recovers Q-learning exactly).
type AdvantageLearning struct {
	*TDBase
	Kappa float64
}

// NewAdvantageLearning returns an AdvantageLearning rule.
func NewAdvantageLearning(discountFactor, eligibilityFactor, learningRate, kappa float64) *AdvantageLearning {
	a := &AdvantageLearning{Kappa: kappa}
	a.TDBase = &TDBase{
		DiscountFactor:    discountFactor,
		EligibilityFactor: eligibilityFactor,
		LearningRate:      learningRate,
		TDError:           a.tdError,
	}
	return a
}

func (a *AdvantageLearning) tdError(ep *episode.Episode, t int) float64 {
	lastAction := ep.Action(t - 1)
	lastReward := ep.Reward(t - 1)

	lastValues := ep.Values(t - 1)
	currentValues := ep.Values(t)

	advantage := lastValues[lastAction]
	lastValue := maxOf(lastValues)
	currentValue := maxOf(currentValues)

	return lastValue + (lastReward+a.DiscountFactor*currentValue-lastValue)/a.Kappa - advantage
}
