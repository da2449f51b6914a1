package model

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// gaussianCluster is one component of an incremental Gaussian mixture: a
// weighted value estimate centered on a moving mean, with a covariance that
// widens or narrows as new points are folded in.
type gaussianCluster struct {
	mean         *mat.VecDense
	covariance   *mat.SymDense
	invCov       *mat.Dense
	weight       float64 // the predicted value at this cluster's mean
	probability  float64 // p(cluster), normalized across all clusters
	sProbability float64 // un-normalized running sum of responsibilities
	normConst    float64 // 1/(2pi)^(D/2) / sqrt(Frobenius norm of covariance)
}

// GaussianMixture is a function approximator over a continuous input space,
// grown incrementally: a new point either nudges an existing cluster toward
// it (covariance-weighted responsibility update) or, if no cluster judges it
// likely enough, spawns a fresh cluster centered on it. Grounded on "An
// Incremental Probabilistic Neural Network for Regression and Reinforcement
// Learning Tasks".
type GaussianMixture struct {
	varInitial float64
	novelty    float64
	dims       int
	invTwoPiD  float64
	clusters   []*gaussianCluster
}

// NewGaussianMixture returns an empty mixture. varInitial is the initial
// (isotropic) variance of a freshly spawned cluster; novelty is the minimum
// responsibility a point must have under an existing cluster before that
// cluster is reused instead of spawning a new one.
func NewGaussianMixture(varInitial, novelty float64) *GaussianMixture {
	return &GaussianMixture{varInitial: varInitial, novelty: novelty}
}

// NumberOfClusters reports the mixture's current size, for diagnostics.
func (g *GaussianMixture) NumberOfClusters() int { return len(g.clusters) }

// Clone returns a deep copy, used by GaussianMixtureModel to seed a learning
// buffer from the currently published mixture before training it further.
func (g *GaussianMixture) Clone() *GaussianMixture {
	clone := &GaussianMixture{
		varInitial: g.varInitial,
		novelty:    g.novelty,
		dims:       g.dims,
		invTwoPiD:  g.invTwoPiD,
		clusters:   make([]*gaussianCluster, len(g.clusters)),
	}
	for i, c := range g.clusters {
		clone.clusters[i] = &gaussianCluster{
			mean:         mat.VecDenseCopyOf(c.mean),
			covariance:   symFromDense(matFromSym(c.covariance), c.covariance.SymmetricDim()),
			invCov:       mat.DenseCopyOf(c.invCov),
			weight:       c.weight,
			probability:  c.probability,
			sProbability: c.sProbability,
			normConst:    c.normConst,
		}
	}
	return clone
}

// Value returns the mixture's weighted prediction at input.
func (g *GaussianMixture) Value(input []float64) float64 {
	if len(g.clusters) == 0 {
		return 0.0
	}
	in := mat.NewVecDense(len(input), input)
	probs := g.probabilitiesOfClusters(in)

	total := 0.0
	for i, c := range g.clusters {
		total += c.weight * probs[i]
	}
	return total
}

// SetValue folds (input, value) into the mixture: reusing a cluster whose
// responsibility for input exceeds its novelty threshold, or else spawning a
// fresh one centered on input.
func (g *GaussianMixture) SetValue(input []float64, value float64) {
	d := len(input)
	g.dims = d
	in := mat.NewVecDense(d, input)

	sumSP := 1.0
	if len(g.clusters) > 0 {
		sumSP = 0.0
		for _, c := range g.clusters {
			sumSP += c.sProbability
		}
	}

	reuse := false
	for _, c := range g.clusters {
		if g.probabilityOfInput(c, in) > c.normConst*g.novelty {
			reuse = true
			break
		}
	}

	if !reuse {
		g.spawnCluster(in, value, sumSP)
		return
	}

	g.updateCluster(in, value, sumSP)
}

func (g *GaussianMixture) spawnCluster(input *mat.VecDense, value, sumSP float64) {
	d := g.dims
	g.invTwoPiD = 1.0 / math.Pow(2*math.Pi, float64(d)*0.5)

	cov := identityScaled(d, g.varInitial)
	invCov := invertSym(cov)

	c := &gaussianCluster{
		mean:         mat.VecDenseCopyOf(input),
		covariance:   cov,
		invCov:       invCov,
		weight:       value,
		probability:  1.0 / sumSP,
		sProbability: 1.0,
		normConst:    g.invTwoPiD / math.Sqrt(frobeniusNorm(cov)),
	}
	g.clusters = append(g.clusters, c)

	invSumSP := 1.0 / (sumSP + 1.0)
	for _, other := range g.clusters[:len(g.clusters)-1] {
		other.probability = other.sProbability * invSumSP
	}
}

func (g *GaussianMixture) updateCluster(input *mat.VecDense, value, sumSP float64) {
	d := g.dims

	inputProbs := make([]float64, len(g.clusters))
	for i, other := range g.clusters {
		inputProbs[i] = g.probabilityOfInput(other, input) * other.probability
	}
	clusterProbs := normalize(inputProbs)

	// The cluster actually updated is whichever has the greatest raw
	// input-likelihood, not necessarily the one whose novelty threshold
	// triggered reuse over spawning a new cluster.
	best := 0
	for i, p := range inputProbs {
		if p > inputProbs[best] {
			best = i
		}
	}
	c := g.clusters[best]
	proba := clusterProbs[best]

	newSProba := c.sProbability + proba
	learningFactor := proba / newSProba

	deltaMean := mat.NewVecDense(d, nil)
	deltaMean.SubVec(input, c.mean)

	deltaMeanFactor := mat.NewVecDense(d, nil)
	deltaMeanFactor.ScaleVec(learningFactor, deltaMean)

	deltaPrevMean := mat.NewVecDense(d, nil)
	deltaPrevMean.SubVec(deltaMean, deltaMeanFactor)

	c.sProbability = newSProba
	c.probability = newSProba / (sumSP + proba)
	c.mean.AddVec(c.mean, deltaMeanFactor)
	c.weight += learningFactor * (value - c.weight)

	outerA := mat.NewDense(d, d, nil)
	outerA.Outer(1, deltaMeanFactor, deltaMeanFactor)

	outerB := mat.NewDense(d, d, nil)
	outerB.Outer(1, deltaPrevMean, deltaPrevMean)

	newCov := mat.NewDense(d, d, nil)
	newCov.Add(matFromSym(c.covariance), outerA)

	diff := mat.NewDense(d, d, nil)
	diff.Sub(outerB, matFromSym(c.covariance))
	diff.Scale(learningFactor, diff)
	newCov.Add(newCov, diff)

	c.covariance = symFromDense(newCov, d)
	c.invCov = invertSym(c.covariance)
	c.normConst = g.invTwoPiD / math.Sqrt(frobeniusNorm(c.covariance))
}

func (g *GaussianMixture) probabilityOfInput(c *gaussianCluster, input *mat.VecDense) float64 {
	d := g.dims
	diff := mat.NewVecDense(d, nil)
	diff.SubVec(input, c.mean)

	tmp := mat.NewVecDense(d, nil)
	tmp.MulVec(c.invCov, diff)

	quad := mat.Dot(diff, tmp)
	return c.normConst * math.Exp(-0.5*quad)
}

func (g *GaussianMixture) probabilitiesOfClusters(input *mat.VecDense) []float64 {
	inputProbs := make([]float64, len(g.clusters))
	for i, c := range g.clusters {
		inputProbs[i] = g.probabilityOfInput(c, input) * c.probability
	}
	return normalize(inputProbs)
}

func normalize(values []float64) []float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	out := make([]float64, len(values))
	if sum == 0 {
		return out
	}
	inv := 1.0 / sum
	for i, v := range values {
		out[i] = v * inv
	}
	return out
}

func identityScaled(d int, scale float64) *mat.SymDense {
	s := mat.NewSymDense(d, nil)
	for i := 0; i < d; i++ {
		s.SetSym(i, i, scale)
	}
	return s
}

func invertSym(s *mat.SymDense) *mat.Dense {
	d := s.SymmetricDim()
	var inv mat.Dense
	if err := inv.Inverse(s); err != nil {
		// A singular covariance only arises from pathological, duplicate
		// points; fall back to the identity so value() stays finite.
		id := mat.NewDense(d, d, nil)
		for i := 0; i < d; i++ {
			id.Set(i, i, 1)
		}
		return id
	}
	return &inv
}

func frobeniusNorm(s *mat.SymDense) float64 {
	d := s.SymmetricDim()
	sum := 0.0
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			v := s.At(i, j)
			sum += v * v
		}
	}
	return math.Sqrt(sum)
}

func matFromSym(s *mat.SymDense) *mat.Dense {
	d := s.SymmetricDim()
	out := mat.NewDense(d, d, nil)
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			out.Set(i, j, s.At(i, j))
		}
	}
	return out
}

func symFromDense(d *mat.Dense, dims int) *mat.SymDense {
	s := mat.NewSymDense(dims, nil)
	for i := 0; i < dims; i++ {
		for j := i; j < dims; j++ {
			s.SetSym(i, j, d.At(i, j))
		}
	}
	return s
}
