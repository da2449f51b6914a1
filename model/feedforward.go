package model

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"

	"rlharness/episode"
	"rlharness/nanguard"
)

// FeedForward is a single hidden-layer neural network model: every
// state-action-value tuple is treated as independent of history (unlike
// Recurrent, which keeps a hidden state across an episode). Training and
// prediction run against separate network buffers, guarded by a mutex so a
// concurrent TEXPLORE actor goroutine can call Values while a learner
// goroutine calls Learn.
type FeedForward struct {
	HiddenUnits  int
	LearningRate float64
	Epochs       int

	mu       sync.Mutex
	network  *feedForwardNet
	learning *feedForwardNet
}

// NewFeedForward returns a FeedForward model with the given hidden layer
// width, learning rate and training epochs per Learn call.
func NewFeedForward(hiddenUnits int, learningRate float64, epochs int) *FeedForward {
	return &FeedForward{HiddenUnits: hiddenUnits, LearningRate: learningRate, Epochs: epochs}
}

func (f *FeedForward) Values(ep *episode.Episode) []float64 {
	f.mu.Lock()
	net := f.network
	f.mu.Unlock()

	if net == nil {
		return make([]float64, ep.ValueSize())
	}

	input := ep.EncodedState(ep.Length() - 1)
	out := net.predict(input)
	nanguard.Check("FeedForward.Values", out)
	return out
}

func (f *FeedForward) Learn(episodes []*episode.Episode) {
	if len(episodes) == 0 {
		return
	}

	inputSize := episodes[0].EncodedStateSize()
	outputSize := episodes[0].ValueSize()

	var inputs, targets [][]float64
	var taken []int
	for _, ep := range episodes {
		for t := 0; t < ep.Length()-1; t++ {
			inputs = append(inputs, ep.EncodedState(t))
			targets = append(targets, ep.Values(t))
			taken = append(taken, ep.Action(t))
		}
	}
	if len(inputs) == 0 {
		return
	}

	f.mu.Lock()
	learning := f.learning
	f.mu.Unlock()

	if learning == nil {
		learning = newFeedForwardNet(inputSize, f.HiddenUnits, outputSize)
	}

	for epoch := 0; epoch < f.Epochs; epoch++ {
		for i := range inputs {
			learning.trainStep(inputs[i], targets[i], taken[i], f.LearningRate)
		}
	}

	f.mu.Lock()
	f.learning = learning
	f.mu.Unlock()
}

// SwapModels publishes a copy of the network trained by the most recent
// Learn call, so later Learn calls keep training a buffer Values never reads.
func (f *FeedForward) SwapModels() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.learning != nil {
		f.network = &feedForwardNet{
			w1: mat.DenseCopyOf(f.learning.w1), w2: mat.DenseCopyOf(f.learning.w2),
			b1: mat.VecDenseCopyOf(f.learning.b1), b2: mat.VecDenseCopyOf(f.learning.b2),
		}
	}
}

func (f *FeedForward) NextEpisode() {}

// feedForwardNet is a tanh-hidden, linear-output one-hidden-layer network
// trained by plain backpropagation.
type feedForwardNet struct {
	w1, w2 *mat.Dense // w1: hidden x input, w2: output x hidden
	b1, b2 *mat.VecDense
}

func newFeedForwardNet(inputSize, hiddenSize, outputSize int) *feedForwardNet {
	w1 := mat.NewDense(hiddenSize, inputSize, nil)
	w2 := mat.NewDense(outputSize, hiddenSize, nil)
	seedSmall(w1)
	seedSmall(w2)
	return &feedForwardNet{
		w1: w1, w2: w2,
		b1: mat.NewVecDense(hiddenSize, nil),
		b2: mat.NewVecDense(outputSize, nil),
	}
}

func seedSmall(m *mat.Dense) {
	rows, cols := m.Dims()
	scale := 1.0 / math.Sqrt(float64(cols)+1)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			// Deterministic small weights (no math/rand seeding dependency):
			// a cheap low-discrepancy fill that still breaks symmetry between
			// hidden units.
			v := math.Mod(float64(i*31+j*17+1)*0.6180339887, 1.0)*2 - 1
			m.Set(i, j, v*scale)
		}
	}
}

func (n *feedForwardNet) forward(input []float64) (hiddenPre, hidden, output *mat.VecDense) {
	in := mat.NewVecDense(len(input), input)

	hr, _ := n.w1.Dims()
	hiddenPre = mat.NewVecDense(hr, nil)
	hiddenPre.MulVec(n.w1, in)
	hiddenPre.AddVec(hiddenPre, n.b1)

	hidden = mat.NewVecDense(hr, nil)
	for i := 0; i < hr; i++ {
		hidden.SetVec(i, math.Tanh(hiddenPre.AtVec(i)))
	}

	or, _ := n.w2.Dims()
	output = mat.NewVecDense(or, nil)
	output.MulVec(n.w2, hidden)
	output.AddVec(output, n.b2)

	return
}

func (n *feedForwardNet) predict(input []float64) []float64 {
	_, _, output := n.forward(input)
	out := make([]float64, output.Len())
	for i := range out {
		out[i] = output.AtVec(i)
	}
	return out
}

// trainStep applies one gradient-descent update for squared-error loss
// between the network's prediction and target, masked to the action
// actually taken: only column `action` of the output layer contributes to
// the gradient, so the untaken actions' stale target values (carried over
// from whatever the model itself predicted for them) never pull the shared
// trunk's weights toward arbitrary targets for experience the agent never
// observed a value for.
func (n *feedForwardNet) trainStep(input, target []float64, action int, rate float64) {
	in := mat.NewVecDense(len(input), input)
	_, hidden, output := n.forward(input)

	_, hiddenRows := n.w2.Dims()

	// dL/doutput = 2*(output - target), zeroed for every output but the
	// taken action.
	outputErr := mat.NewVecDense(len(target), nil)
	outputErr.SetVec(action, 2*(output.AtVec(action)-target[action]))

	// Gradient for w2, b2
	gradW2 := mat.NewDense(len(target), hiddenRows, nil)
	gradW2.Outer(1, outputErr, hidden)

	// Backprop into hidden: w2^T * outputErr, scaled by tanh'(hiddenPre) = 1-hidden^2
	hiddenErr := mat.NewVecDense(hiddenRows, nil)
	hiddenErr.MulVec(n.w2.T(), outputErr)
	for i := 0; i < hiddenRows; i++ {
		h := hidden.AtVec(i)
		hiddenErr.SetVec(i, hiddenErr.AtVec(i)*(1-h*h))
	}

	gradW1 := mat.NewDense(hiddenRows, len(input), nil)
	gradW1.Outer(1, hiddenErr, in)

	applyGrad(n.w2, gradW2, rate)
	applyGrad(n.w1, gradW1, rate)
	applyGradVec(n.b2, outputErr, rate)
	applyGradVec(n.b1, hiddenErr, rate)
}

func applyGrad(w, grad *mat.Dense, rate float64) {
	rows, cols := w.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			w.Set(i, j, w.At(i, j)-rate*grad.At(i, j))
		}
	}
}

func applyGradVec(v, grad *mat.VecDense, rate float64) {
	for i := 0; i < v.Len(); i++ {
		v.SetVec(i, v.AtVec(i)-rate*grad.AtVec(i))
	}
}
