package worldapi

// PostProcessor transforms a state vector after the wrapped world produces
// it, returning the transformed vector. Scale and OneHot are the two concrete post-processors named
// in spec §4.3.
type PostProcessor interface {
	Process(state []float64) []float64
}

// PostProcessWorld delegates Step/InitialState/Reset to an inner World, then
// runs the returned state through a PostProcessor. It never changes the
// action count.
type PostProcessWorld struct {
	inner     World
	processor PostProcessor
}

// NewPostProcessWorld wraps world, applying processor to every state it returns.
func NewPostProcessWorld(world World, processor PostProcessor) *PostProcessWorld {
	return &PostProcessWorld{inner: world, processor: processor}
}

func (w *PostProcessWorld) NumActions() int { return w.inner.NumActions() }

func (w *PostProcessWorld) Reset() { w.inner.Reset() }

func (w *PostProcessWorld) InitialState() []float64 {
	return w.processor.Process(w.inner.InitialState())
}

func (w *PostProcessWorld) Step(action int) (finished bool, reward float64, state []float64) {
	finished, reward, state = w.inner.Step(action)
	state = w.processor.Process(state)
	return
}

func (w *PostProcessWorld) StepSupervised(action int, targetState []float64, reward float64) {
	w.inner.StepSupervised(action, targetState, reward)
}

// Scale multiplies each state coordinate element-wise by a fixed weight
// vector. A zero weight induces partial observability by erasing that
// coordinate entirely.
type Scale struct {
	Weights []float64
}

func NewScale(weights []float64) *Scale {
	return &Scale{Weights: append([]float64(nil), weights...)}
}

func (s *Scale) Process(state []float64) []float64 {
	out := make([]float64, len(state))
	for i, v := range state {
		w := 1.0
		if i < len(s.Weights) {
			w = s.Weights[i]
		}
		out[i] = v * w
	}
	return out
}

// OneHot expands each integer-valued coordinate x in [min_i, max_i] into a
// one-hot sub-vector of length max_i-min_i+1, with a triangular kernel of
// width 1: cell k receives max(0, 1 - |k - (x-min_i)|). This lets nearby
// integer values share activation mass instead of a hard one-hot.
type OneHot struct {
	Min, Max []int
}

// NewOneHot builds a OneHot encoder; min and max must have one entry per
// state coordinate.
func NewOneHot(min, max []int) *OneHot {
	return &OneHot{
		Min: append([]int(nil), min...),
		Max: append([]int(nil), max...),
	}
}

// EncodedSize returns the total length of the one-hot encoded vector.
func (o *OneHot) EncodedSize() int {
	total := 0
	for i := range o.Min {
		total += o.Max[i] - o.Min[i] + 1
	}
	return total
}

func (o *OneHot) Process(state []float64) []float64 {
	out := make([]float64, 0, o.EncodedSize())
	for i, x := range state {
		lo, hi := o.Min[i], o.Max[i]
		width := hi - lo + 1
		offset := x - float64(lo)
		for k := 0; k < width; k++ {
			v := 1.0 - absFloat(float64(k)-offset)
			if v < 0 {
				v = 0
			}
			out = append(out, v)
		}
	}
	return out
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
