// Package nanguard is the idiomatic-Go stand-in for the FPU invalid-operation
// trap the original engine enables at process start: models that can
// actually produce NaN/Inf (GaussianMixtureModel, FeedForward, Recurrent)
// call Check on every Values result, turning a silent numerical corruption
// into the same synchronous crash a hardware trap would raise. Table never
// computes anything that could degrade to NaN/Inf, so it never calls Check.
package nanguard

import (
	"fmt"
	"math"
)

// Check panics if any value in vals is NaN or infinite. label identifies the
// call site in the panic message (e.g. "gaussianmixture.Values").
func Check(label string, vals []float64) {
	for i, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			panic(fmt.Sprintf("nanguard: %s produced non-finite value %v at index %d", label, v, i))
		}
	}
}
