package normalize

import "sort"

// Function is a fitted scalar transform. Implementations are immutable
// after construction and safe to share across concurrent Apply calls.
type Function interface {
	// Eval applies the transform to one value.
	Eval(x float64) float64
}

// Subtract is the degenerate transform used when every observed quantile
// collapsed to one distinct value: f(x) = x - V.
type Subtract struct {
	V float64
}

// Eval implements Function.
func (s Subtract) Eval(x float64) float64 { return x - s.V }

// Piecewise is a monotone piecewise-linear interpolant through
// (Values[i], Targets[i]) breakpoints. Outside the fitted range it
// extrapolates linearly with the slope of the nearest segment; it never
// clamps and never fails on out-of-range input.
//
// Invariant: len(Values) == len(Targets) >= 2 and Values is strictly
// increasing (the tie merge guarantees it).
type Piecewise struct {
	Values  []float64
	Targets []float64
}

// Eval implements Function.
func (p Piecewise) Eval(x float64) float64 {
	xs, ys := p.Values, p.Targets
	n := len(xs)

	switch {
	case x <= xs[0]:
		return ys[0] + (x-xs[0])*segmentSlope(xs[0], ys[0], xs[1], ys[1])
	case x >= xs[n-1]:
		return ys[n-1] + (x-xs[n-1])*segmentSlope(xs[n-2], ys[n-2], xs[n-1], ys[n-1])
	}

	// xs[i-1] < x < xs[i]
	i := sort.SearchFloat64s(xs, x)
	t := (x - xs[i-1]) / (xs[i] - xs[i-1])
	return ys[i-1] + t*(ys[i]-ys[i-1])
}

func segmentSlope(x0, y0, x1, y1 float64) float64 {
	return (y1 - y0) / (x1 - x0)
}
