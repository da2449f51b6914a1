package config

import (
	"fmt"

	"rlharness/episode"
	"rlharness/learning"
	"rlharness/model"
	"rlharness/modelbased"
	"rlharness/selector"
	"rlharness/worldapi"
	"rlharness/worldimpl"
)

// Build accumulates the CLI's left-to-right positional tokens (spec §6) into
// the pieces an Agent is wired from. The zero value is ready to use.
type Build struct {
	HP HyperParameters

	world       worldapi.World
	worldChosen bool
	oneHotMin   []int
	oneHotMax   []int

	modelKind string // value-model backend token; dyna also uses it for the world model

	learner    learning.Learning
	learnerSet bool
	sel        selector.Selector

	dyna bool

	// ROSSubs/ROSProducers let an embedder wire rospendulum's external
	// transport before calling Process; the token itself cannot carry a
	// Publisher/Subscription, so it is a configuration error to use the
	// token without pre-populating these.
	ROSSubs      []worldimpl.Subscription
	ROSProducers []*worldimpl.Producer
}

// NewBuild returns a Build seeded with the package's default hyperparameters.
func NewBuild() *Build {
	return &Build{HP: DefaultHyperParameters()}
}

// TokenPipeline folds §6's CLI tokens over a Build, left to right, exactly
// the way main.selectTrack picks a track today: a small switch/accumulate
// loop, not a generic plugin registry.
type TokenPipeline struct {
	Build *Build
}

// NewTokenPipeline returns a pipeline over a fresh Build.
func NewTokenPipeline() *TokenPipeline {
	return &TokenPipeline{Build: NewBuild()}
}

// Process folds every token in order. Unknown tokens are ignored per spec
// §6. Returns an error (never panics) on a malformed combination — a
// selector before any learner; randominitial, pomdp, oneofn or dyna before
// any world; randominitial on a world that cannot randomize its start;
// rospendulum without ROSSubs/ROSProducers — which the CLI frontend reports
// to stderr with exit code 1.
func (p *TokenPipeline) Process(tokens []string) error {
	for _, tok := range tokens {
		if err := p.apply(tok); err != nil {
			return fmt.Errorf("config: token %q: %w", tok, err)
		}
	}
	return nil
}

func (p *TokenPipeline) apply(tok string) error {
	b := p.Build

	switch tok {
	case "gridworld":
		b.world = worldimpl.NewGridWorld(10, 5, worldimpl.Point{X: 0, Y: 2}, worldimpl.Point{X: 5, Y: 2}, worldimpl.Point{X: 9, Y: 2}, false)
		b.worldChosen = true
		b.oneHotMin, b.oneHotMax = []int{0, 0}, []int{9, 4}

	case "polargridworld":
		b.world = worldimpl.NewPolarGridWorld(10, 5, worldimpl.Point{X: 0, Y: 2}, worldimpl.Point{X: 5, Y: 2}, worldimpl.Point{X: 9, Y: 2}, false)
		b.worldChosen = true
		b.oneHotMin, b.oneHotMax = []int{0, 0}, []int{3, 9}

	case "tmaze":
		b.world = worldimpl.NewTMazeWorld(8, 1000)
		b.worldChosen = true
		b.oneHotMin, b.oneHotMax = []int{0, 0, 0}, []int{1, 8, 1}
		b.HP.NumEpisodes = 50000
		b.HP.DiscountFactor = 0.98

	case "randominitial":
		if !b.worldChosen {
			return fmt.Errorf("randominitial requires a world token first")
		}
		g, ok := b.world.(interface{ SetStochastic(bool) })
		if !ok {
			return fmt.Errorf("randominitial is not supported by the current world")
		}
		g.SetStochastic(true)

	case "pomdp":
		if !b.worldChosen {
			return fmt.Errorf("pomdp requires a world token first")
		}
		b.world = worldapi.NewPostProcessWorld(b.world, worldapi.NewScale([]float64{1, 0}))

	case "oneofn":
		if !b.worldChosen {
			return fmt.Errorf("oneofn requires a world token first")
		}
		min, max := clampOneHotRanges(b.oneHotMin, b.oneHotMax, 16)
		b.world = worldapi.NewPostProcessWorld(b.world, worldapi.NewOneHot(min, max))

	case "table":
		b.modelKind = tok

	case "gaussian":
		b.modelKind = tok

	case "perceptron":
		b.modelKind = tok

	case "stackedgru", "stackedlstm":
		b.modelKind = tok

	case "qlearning":
		b.learner = learning.NewQLearning(b.HP.DiscountFactor, b.HP.EligibilityFactor, b.HP.LearningRate)
		b.learnerSet = true

	case "advantage":
		b.learner = learning.NewAdvantageLearning(b.HP.DiscountFactor, b.HP.EligibilityFactor, b.HP.LearningRate, b.HP.Kappa)
		b.learnerSet = true

	case "egreedy":
		if !b.learnerSet {
			return fmt.Errorf("egreedy requires a learner token first")
		}
		b.sel = selector.NewEGreedy(b.learner, b.HP.Epsilon)

	case "softmax":
		if !b.learnerSet {
			return fmt.Errorf("softmax requires a learner token first")
		}
		b.sel = selector.NewSoftmax(b.learner, b.HP.Temperature)

	case "adaptivesoftmax":
		if !b.learnerSet {
			return fmt.Errorf("adaptivesoftmax requires a learner token first")
		}
		b.sel = selector.NewAdaptiveSoftmax(b.learner, b.HP.DiscountFactor)

	case "dyna":
		if !b.worldChosen {
			return fmt.Errorf("dyna requires a world token first")
		}
		b.dyna = true

	case "rospendulum":
		if len(b.ROSSubs) == 0 || len(b.ROSProducers) == 0 {
			return fmt.Errorf("rospendulum requires ROSSubs/ROSProducers to be configured before Process")
		}
		b.world = worldimpl.NewROSWorld(b.ROSSubs, b.ROSProducers)
		b.worldChosen = true
		b.oneHotMin, b.oneHotMax = nil, nil
	}

	return nil
}

func clampOneHotRanges(min, max []int, maxBins int) ([]int, []int) {
	out := make([]int, len(max))
	copy(out, max)
	for i := range out {
		if out[i]-min[i]+1 > maxBins {
			out[i] = min[i] + maxBins - 1
		}
	}
	return min, out
}

func newValueModelBackend(kind string) model.Model {
	switch kind {
	case "gaussian":
		return model.NewGaussianMixtureModel(1.0, 0.1, 0.05)
	case "perceptron":
		return model.NewFeedForward(16, 0.05, 5)
	case "stackedgru", "stackedlstm":
		return model.NewRecurrent(16, 0.05, 5, 64)
	default:
		return model.NewTable()
	}
}

// Finish validates the Build and assembles everything needed to run an
// Agent, per spec §7's Configuration error policy: a missing world, model or
// learner is reported and must cause the caller to exit 1 before any loop
// begins.
func (b *Build) Finish(encoder episode.Encoder) (worldapi.World, model.Model, selector.Selector, error) {
	if !b.worldChosen {
		return nil, nil, nil, fmt.Errorf("config: no world token given")
	}
	if b.modelKind == "" {
		return nil, nil, nil, fmt.Errorf("config: no model token given")
	}
	if !b.learnerSet {
		return nil, nil, nil, fmt.Errorf("config: no learner token given")
	}
	if b.sel == nil {
		return nil, nil, nil, fmt.Errorf("config: no selector token given")
	}

	valueModel := newValueModelBackend(b.modelKind)

	if b.dyna {
		worldModel := newValueModelBackend(b.modelKind)
		dyna := modelbased.NewDynaModel(b.world, worldModel, valueModel, b.sel, b.HP.RolloutLength, b.HP.NumRollouts, encoder)
		return b.world, dyna, b.sel, nil
	}

	return b.world, valueModel, b.sel, nil
}
