// Package selector turns the per-action values a learning rule has just
// updated into an action distribution: the strategies traded off here are
// purely how to turn values into exploration, not how the values themselves
// are computed.
package selector

import (
	"math"
	"math/rand"

	"rlharness/episode"
	"rlharness/learning"
)

// Selector wraps a Learning rule, converting its corrected action values
// into a probability distribution and sampling an action from it.
type Selector interface {
	// Probabilities lets the wrapped rule update ep, then returns an action
	// distribution over ep's most recent state.
	Probabilities(ep *episode.Episode) []float64

	// Select draws an action index from Probabilities(ep).
	Select(ep *episode.Episode) int

	// ValueSize is the number of value slots an episode driven by this
	// selector must carry.
	ValueSize(numActions int) int
}

func sample(probabilities []float64) int {
	r := rand.Float64()
	cum := 0.0
	for i, p := range probabilities {
		cum += p
		if r < cum {
			return i
		}
	}
	return len(probabilities) - 1
}

// EGreedy picks the highest-valued action with probability 1-epsilon, and
// otherwise spreads the remaining mass uniformly over every other action.
type EGreedy struct {
	Learning learning.Learning
	Epsilon  float64
}

// NewEGreedy wraps rule with epsilon-greedy action selection.
func NewEGreedy(rule learning.Learning, epsilon float64) *EGreedy {
	return &EGreedy{Learning: rule, Epsilon: epsilon}
}

func (s *EGreedy) ValueSize(numActions int) int { return s.Learning.ValueSize(numActions) }

func (s *EGreedy) Probabilities(ep *episode.Episode) []float64 {
	s.Learning.Learn(ep)
	values := ep.Values(ep.Length() - 1)
	values = values[:ep.NumActions()]

	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}

	n := len(values)
	probabilities := make([]float64, n)
	uniform := s.Epsilon / float64(n-1)
	for i := range probabilities {
		probabilities[i] = uniform
	}
	probabilities[best] = 1.0 - s.Epsilon

	return probabilities
}

func (s *EGreedy) Select(ep *episode.Episode) int {
	return sample(s.Probabilities(ep))
}

// Softmax converts action values into a Boltzmann distribution with the
// given temperature: higher temperatures flatten the distribution toward
// uniform exploration, lower temperatures sharpen it toward pure greed.
type Softmax struct {
	Learning    learning.Learning
	Temperature float64
}

// NewSoftmax wraps rule with Softmax action selection at the given
// temperature.
func NewSoftmax(rule learning.Learning, temperature float64) *Softmax {
	return &Softmax{Learning: rule, Temperature: temperature}
}

func (s *Softmax) ValueSize(numActions int) int { return s.Learning.ValueSize(numActions) }

func (s *Softmax) Probabilities(ep *episode.Episode) []float64 {
	s.Learning.Learn(ep)
	return s.distribution(ep, s.Temperature)
}

func (s *Softmax) distribution(ep *episode.Episode, temperature float64) []float64 {
	values := ep.Values(ep.Length() - 1)
	values = values[:ep.NumActions()]

	exps := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		exps[i] = math.Exp(v / temperature)
		sum += exps[i]
	}
	for i := range exps {
		exps[i] /= sum
	}
	return exps
}

func (s *Softmax) Select(ep *episode.Episode) int {
	return sample(s.Probabilities(ep))
}

// AdaptiveSoftmax wraps Softmax, adjusting its own temperature every step
// from the size of the TD error the wrapped rule reports: a state whose
// predicted discounted future error is large stays exploratory, a
// well-understood state sharpens toward greed. Grounded on Bakker (2001)'s
// adaptive temperature, it needs one extra value slot per time step to carry
// the predicted temperature forward.
type AdaptiveSoftmax struct {
	*Softmax
	DiscountFactor float64
	MinTemperature float64
}

// NewAdaptiveSoftmax wraps rule with adaptive-temperature Softmax selection.
func NewAdaptiveSoftmax(rule learning.Learning, discountFactor float64) *AdaptiveSoftmax {
	return &AdaptiveSoftmax{
		Softmax:        &Softmax{Learning: rule, Temperature: 1.0},
		DiscountFactor: discountFactor,
		MinTemperature: 0.2,
	}
}

func (s *AdaptiveSoftmax) ValueSize(numActions int) int {
	return s.Learning.ValueSize(numActions) + 1
}

func (s *AdaptiveSoftmax) Probabilities(ep *episode.Episode) []float64 {
	tdError := s.Learning.Learn(ep)
	temperature := s.adjustTemperature(ep, tdError)
	return s.distribution(ep, temperature)
}

func (s *AdaptiveSoftmax) adjustTemperature(ep *episode.Episode, tdError float64) float64 {
	currentT := ep.Length() - 1
	tempIndex := ep.ValueSize() - 1

	currentTemperature := ep.Values(currentT)[tempIndex]
	prevTemperature := math.Abs(tdError) + s.DiscountFactor*currentTemperature

	if ep.Length() > 1 {
		ep.UpdateValue(currentT-1, tempIndex, prevTemperature)
	}

	if currentTemperature < s.MinTemperature {
		return s.MinTemperature
	}
	return currentTemperature
}
