// Package normalize fits and applies per-(object type, feature) scalar
// transforms that map empirical feature distributions onto [-1, 1].
//
// FITTING:
//
// For each requested pair, the fit concatenates the flattened values
// observed across a sampled corpus, takes B evenly spaced empirical
// quantiles, and merges breakpoints that share a value (the merged
// breakpoint keeps the mean of the merged probabilities). One distinct
// value degenerates to a subtraction; otherwise the transform is the
// monotone piecewise-linear interpolant through (value, -1+2p), linearly
// extrapolated beyond the fitted range.
//
// The table is key-addressed throughout: grids with permuted object
// orderings normalize identically, which is what makes the output safe for
// permutation-equivariant models.
//
// DETERMINISM:
//
// Fitting on a fixed, unshuffled sample list is deterministic across runs;
// shuffled fits are reproducible under a fixed seed. Saved artifacts are
// canonical JSON, so identical tables serialize to identical bytes.
package normalize
