package normalize

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// quantileProbs returns the B evenly spaced probabilities i/B for
// i = 0..B-1. The top of the distribution is deliberately excluded: the
// highest breakpoint sits at (B-1)/B, so fitted targets stay inside the
// open upper end of [-1, 1).
func quantileProbs(breakPoints int) []float64 {
	// floats.Span needs at least two elements; a single breakpoint is
	// just the bottom of the distribution.
	if breakPoints == 1 {
		return []float64{0}
	}
	p := make([]float64, breakPoints)
	floats.Span(p, 0, float64(breakPoints-1)/float64(breakPoints))
	return p
}

// quantiles computes the empirical quantile values of vals at the given
// probabilities using the linear rule h = p*(n-1), interpolating between
// the two order statistics that bracket h.
func quantiles(vals []float64, probs []float64) []float64 {
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	n := len(sorted)
	out := make([]float64, len(probs))
	for i, p := range probs {
		h := p * float64(n-1)
		lo := int(math.Floor(h))
		if lo >= n-1 {
			out[i] = sorted[n-1]
			continue
		}
		frac := h - float64(lo)
		out[i] = sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
	}
	return out
}

// mergeEqualQuantiles deduplicates breakpoints that share a quantile
// value. Each distinct value keeps the MEAN of the probabilities of the
// merged breakpoints - ties are resolved by averaging rank, not by first
// or last occurrence. Quantile values arrive nondecreasing, so merging is
// a single pass over equal runs; the result is strictly increasing.
func mergeEqualQuantiles(v, p []float64) (vUnique, pUnique []float64) {
	for i := 0; i < len(v); {
		j := i
		sum := 0.0
		for j < len(v) && v[j] == v[i] {
			sum += p[j]
			j++
		}
		vUnique = append(vUnique, v[i])
		pUnique = append(pUnique, sum/float64(j-i))
		i = j
	}
	return vUnique, pUnique
}

// buildFunction fits the transform for one (object type, feature) pair
// from all observed values. An empty observation set yields nil: the pair
// was requested but never seen, and Apply passes it through unchanged.
func buildFunction(vals []float64, breakPoints int) Function {
	if len(vals) == 0 {
		return nil
	}

	probs := quantileProbs(breakPoints)
	v, p := mergeEqualQuantiles(quantiles(vals, probs), probs)
	if len(v) == 1 {
		return Subtract{V: v[0]}
	}

	targets := make([]float64, len(p))
	for i, pi := range p {
		targets[i] = -1 + 2*pi
	}
	return Piecewise{Values: v, Targets: targets}
}
