package backend

import (
	"slices"

	"github.com/veldt/gridfeat/internal/grid"
)

// CheckFeatureNames walks a selection against the engine's feature
// registry and returns a NameError for the first invalid object type or
// feature name. The walk is key-sorted, so the reported name is stable for
// a given selection.
func CheckFeatureNames(b Backend, sel grid.Selection) error {
	return checkNames(KindFeature, b.ValidFeatureNames(), sel)
}

// CheckAddressNames walks a selection against the engine's address
// registry and returns a NameError for the first invalid object type or
// address role.
func CheckAddressNames(b Backend, sel grid.Selection) error {
	return checkNames(KindAddress, b.ValidAddressNames(), sel)
}

func checkNames(kind NameKind, valid map[string][]string, sel grid.Selection) error {
	for _, k := range grid.SortedKeys(sel) {
		validNames, ok := valid[k]
		if !ok {
			return &NameError{Kind: kind, Object: k, Valid: grid.SortedKeys(valid)}
		}
		for _, name := range sel[k] {
			if !slices.Contains(validNames, name) {
				return &NameError{Kind: kind, Object: k, Name: name, Valid: append([]string(nil), validNames...)}
			}
		}
	}
	return nil
}
