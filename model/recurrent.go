package model

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"rlharness/episode"
	"rlharness/nanguard"
)

// Recurrent is an Elman-style recurrent network model: hidden state carries
// information across time steps of the same episode, so (unlike FeedForward)
// state-action-value tuples are not independent of history. NextEpisode
// resets the hidden state; Values also resets it whenever it detects the
// episode has restarted (its length no longer exceeds the last length seen),
// mirroring how a time-series model can't be driven with encodedState alone.
// Each Values call feeds the network every state appended since the previous
// call (the whole episode after a reset), so the hidden state stays in step
// with the episode even when calls skip time steps.
type Recurrent struct {
	HiddenUnits  int
	LearningRate float64
	Epochs       int
	// HistoryWindow caps how many trailing steps of a long episode are
	// replayed when training, since replaying an entire multi-thousand-step
	// episode every Learn call does not scale.
	HistoryWindow int

	network  *recurrentNet
	learning *recurrentNet

	hidden            *mat.VecDense
	lastEpisodeLength int
}

// NewRecurrent returns a Recurrent model. historyWindow <= 0 means no cap.
func NewRecurrent(hiddenUnits int, learningRate float64, epochs, historyWindow int) *Recurrent {
	return &Recurrent{
		HiddenUnits: hiddenUnits, LearningRate: learningRate,
		Epochs: epochs, HistoryWindow: historyWindow,
	}
}

func (r *Recurrent) NextEpisode() {
	r.hidden = nil
	r.lastEpisodeLength = 0
}

func (r *Recurrent) Values(ep *episode.Episode) []float64 {
	if r.network == nil {
		return make([]float64, ep.ValueSize())
	}

	start := r.lastEpisodeLength
	if ep.Length() <= r.lastEpisodeLength {
		r.hidden = nil
		start = 0
	}
	r.lastEpisodeLength = ep.Length()

	if r.hidden == nil {
		r.hidden = mat.NewVecDense(r.HiddenUnits, nil)
	}

	var output []float64
	for t := start; t < ep.Length(); t++ {
		output, r.hidden = r.network.step(ep.State(t), r.hidden)
	}
	nanguard.Check("Recurrent.Values", output)
	return output
}

func (r *Recurrent) Learn(episodes []*episode.Episode) {
	if len(episodes) == 0 {
		return
	}

	inputSize := episodes[0].StateSize()
	outputSize := episodes[0].ValueSize()

	if r.learning == nil {
		r.learning = newRecurrentNet(inputSize, r.HiddenUnits, outputSize)
	}

	for _, ep := range episodes {
		startT := 0
		if r.HistoryWindow > 0 && ep.Length()-r.HistoryWindow > startT {
			startT = ep.Length() - r.HistoryWindow
		}

		for epoch := 0; epoch < r.Epochs; epoch++ {
			hidden := mat.NewVecDense(r.HiddenUnits, nil)
			for t := startT; t < ep.Length()-1; t++ {
				state := ep.State(t)
				target := ep.Values(t)
				newHidden := r.learning.trainStep(state, target, hidden, r.LearningRate)
				hidden = newHidden
			}
		}
	}
}

// SwapModels publishes the network trained by the most recent Learn call.
func (r *Recurrent) SwapModels() {
	if r.learning != nil {
		r.network = r.learning
	}
}

type recurrentNet struct {
	wx, wh, wo *mat.Dense
	b1, b2     *mat.VecDense
}

func newRecurrentNet(inputSize, hiddenSize, outputSize int) *recurrentNet {
	wx := mat.NewDense(hiddenSize, inputSize, nil)
	wh := mat.NewDense(hiddenSize, hiddenSize, nil)
	wo := mat.NewDense(outputSize, hiddenSize, nil)
	seedSmall(wx)
	seedSmall(wh)
	seedSmall(wo)
	return &recurrentNet{
		wx: wx, wh: wh, wo: wo,
		b1: mat.NewVecDense(hiddenSize, nil),
		b2: mat.NewVecDense(outputSize, nil),
	}
}

func (n *recurrentNet) forward(input []float64, prevHidden *mat.VecDense) (hidden, output *mat.VecDense) {
	in := mat.NewVecDense(len(input), input)

	hr, _ := n.wx.Dims()
	fromInput := mat.NewVecDense(hr, nil)
	fromInput.MulVec(n.wx, in)

	fromHidden := mat.NewVecDense(hr, nil)
	fromHidden.MulVec(n.wh, prevHidden)

	pre := mat.NewVecDense(hr, nil)
	pre.AddVec(fromInput, fromHidden)
	pre.AddVec(pre, n.b1)

	hidden = mat.NewVecDense(hr, nil)
	for i := 0; i < hr; i++ {
		hidden.SetVec(i, math.Tanh(pre.AtVec(i)))
	}

	or, _ := n.wo.Dims()
	output = mat.NewVecDense(or, nil)
	output.MulVec(n.wo, hidden)
	output.AddVec(output, n.b2)

	return
}

func (n *recurrentNet) step(input []float64, prevHidden *mat.VecDense) (output []float64, hidden *mat.VecDense) {
	hidden, out := n.forward(input, prevHidden)
	result := make([]float64, out.Len())
	for i := range result {
		result[i] = out.AtVec(i)
	}
	return result, hidden
}

// trainStep applies a truncated (one-step) gradient update treating the
// incoming hidden state as fixed context rather than differentiating through
// the full unrolled history: a deliberate simplification of full
// backpropagation-through-time, traded for a model that can be updated
// incrementally as an episode is replayed.
func (n *recurrentNet) trainStep(input, target []float64, prevHidden *mat.VecDense, rate float64) *mat.VecDense {
	in := mat.NewVecDense(len(input), input)
	hidden, output := n.forward(input, prevHidden)

	outputErr := mat.NewVecDense(len(target), nil)
	for i := range target {
		outputErr.SetVec(i, 2*(output.AtVec(i)-target[i]))
	}

	hiddenRows, _ := n.wh.Dims()

	gradWo := mat.NewDense(len(target), hiddenRows, nil)
	gradWo.Outer(1, outputErr, hidden)

	hiddenErr := mat.NewVecDense(hiddenRows, nil)
	hiddenErr.MulVec(n.wo.T(), outputErr)
	for i := 0; i < hiddenRows; i++ {
		h := hidden.AtVec(i)
		hiddenErr.SetVec(i, hiddenErr.AtVec(i)*(1-h*h))
	}

	gradWx := mat.NewDense(hiddenRows, len(input), nil)
	gradWx.Outer(1, hiddenErr, in)

	gradWh := mat.NewDense(hiddenRows, prevHidden.Len(), nil)
	gradWh.Outer(1, hiddenErr, prevHidden)

	applyGrad(n.wo, gradWo, rate)
	applyGrad(n.wx, gradWx, rate)
	applyGrad(n.wh, gradWh, rate)
	applyGradVec(n.b2, outputErr, rate)
	applyGradVec(n.b1, hiddenErr, rate)

	return hidden
}
