// Package grid defines the nested value model shared by the backend layer
// and the normalizer.
//
// A grid instance is viewed as two parallel nested dictionaries:
//
//   - Features: object type (e.g. "load") -> feature name (e.g. "p_mw") ->
//     one float32 per instance of that object type.
//   - Addresses: object type -> address role (e.g. "from_bus") -> one dense
//     integer code per instance, referencing other objects.
//
// All columns under one object type share a length (the instance count).
// Nothing in this package is position-addressed: every walk over a nested
// dictionary goes through sorted keys so that two grids with permuted
// object orderings produce the same derived data.
package grid

import "sort"

// Features maps object type -> feature name -> per-instance column.
type Features map[string]map[string][]float32

// Addresses maps object type -> address role -> per-instance integer codes.
// Codes are relational lookups, never ownership references.
type Addresses map[string]map[string][]int

// Selection maps object type -> requested feature or address names.
type Selection map[string][]string

// SortedKeys returns the keys of a string-keyed map in sorted order.
// Deterministic key walks are the permutation-equivariance discipline of
// this package; every iteration over a nested dictionary uses it.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of a feature dictionary. The copy shares no
// backing arrays with the original.
func (x Features) Clone() Features {
	out := make(Features, len(x))
	for k, xk := range x {
		out[k] = make(map[string][]float32, len(xk))
		for f, col := range xk {
			c := make([]float32, len(col))
			copy(c, col)
			out[k][f] = c
		}
	}
	return out
}

// Lengths reports the instance count per object type, taken from the first
// column under each type. A type with no columns reports zero.
func (x Features) Lengths() map[string]int {
	out := make(map[string]int, len(x))
	for k, xk := range x {
		n := 0
		for _, col := range xk {
			n = len(col)
			break
		}
		out[k] = n
	}
	return out
}

// Clone returns a copy of a selection with fresh name slices.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for k, names := range s {
		out[k] = append([]string(nil), names...)
	}
	return out
}

// CleanFeatures removes zero-length columns and then object types left with
// no columns. It mutates and returns x for chaining.
func CleanFeatures(x Features) Features {
	for k, xk := range x {
		for f, col := range xk {
			if len(col) == 0 {
				delete(xk, f)
			}
		}
		if len(xk) == 0 {
			delete(x, k)
		}
	}
	return x
}

// CleanAddresses removes zero-length columns and then object types left
// with no columns. It mutates and returns a for chaining.
func CleanAddresses(a Addresses) Addresses {
	for k, ak := range a {
		for f, col := range ak {
			if len(col) == 0 {
				delete(ak, f)
			}
		}
		if len(ak) == 0 {
			delete(a, k)
		}
	}
	return a
}

// Collate concatenates a batch of feature dictionaries per key, in batch
// order. It is the accumulation step used when fitting over a corpus: the
// result holds, for each (object type, feature) pair, the flattened values
// of every grid in the batch that carried that pair.
func Collate(batch []Features) Features {
	out := Features{}
	for _, x := range batch {
		for _, k := range SortedKeys(x) {
			if out[k] == nil {
				out[k] = map[string][]float32{}
			}
			for _, f := range SortedKeys(x[k]) {
				out[k][f] = append(out[k][f], x[k][f]...)
			}
		}
	}
	return out
}
