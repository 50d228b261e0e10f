package normalize

import (
	"github.com/veldt/gridfeat/internal/grid"
)

// Normalizer holds one fitted scalar transform per (object type, feature)
// pair. The function table is built once by Fit or restored by Load and is
// immutable afterwards; Apply never mutates it, so a Normalizer is safe to
// share across concurrent Apply calls.
type Normalizer struct {
	// ID identifies the fitted artifact (a UUID minted at fit time).
	ID string

	// BackendName records which engine's feature registry the table was
	// fitted against.
	BackendName string

	// BreakPoints is the quantile resolution the fit used.
	BreakPoints int

	// functions maps object type -> feature -> transform. A present key
	// with a nil Function means the pair was requested at fit time but
	// never observed; Apply treats it as identity.
	functions map[string]map[string]Function
}

// Function returns the fitted transform for a pair, if one is present and
// non-absent.
func (n *Normalizer) Function(object, feature string) (Function, bool) {
	fn, ok := n.functions[object][feature]
	if !ok || fn == nil {
		return nil, false
	}
	return fn, true
}

// FittedSelection lists the pairs that carry a non-absent transform, as a
// selection usable for extraction.
func (n *Normalizer) FittedSelection() grid.Selection {
	sel := grid.Selection{}
	for _, k := range grid.SortedKeys(n.functions) {
		for _, f := range grid.SortedKeys(n.functions[k]) {
			if n.functions[k][f] != nil {
				sel[k] = append(sel[k], f)
			}
		}
	}
	return sel
}

// Counts reports the number of fitted and absent transforms in the table.
func (n *Normalizer) Counts() (fitted, absent int) {
	for _, fk := range n.functions {
		for _, fn := range fk {
			if fn == nil {
				absent++
			} else {
				fitted++
			}
		}
	}
	return fitted, absent
}

// Apply normalizes a nested feature dictionary. The result is structurally
// identical and allocation-fresh: the input is never mutated and no
// backing arrays are shared. Object types and features with no fitted
// transform (including fitted-absent ones) pass through with their values
// copied unchanged.
func (n *Normalizer) Apply(x grid.Features) grid.Features {
	out := make(grid.Features, len(x))
	for k, xk := range x {
		outK := make(map[string][]float32, len(xk))
		fk := n.functions[k]
		for f, col := range xk {
			outCol := make([]float32, len(col))
			if fn := fk[f]; fn != nil {
				for i, v := range col {
					outCol[i] = float32(fn.Eval(float64(v)))
				}
			} else {
				copy(outCol, col)
			}
			outK[f] = outCol
		}
		out[k] = outK
	}
	return out
}
