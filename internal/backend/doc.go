// Package backend defines the uniform contract over heterogeneous power
// grid simulation engines.
//
// ARCHITECTURE:
//
// One interface, a closed set of engines:
// Every engine implements Backend and registers a factory under a
// configuration name. Callers select an engine with Get("pandapower") at
// construction time; there is no runtime type inspection anywhere in the
// pipeline. Each engine carries immutable registries of its valid object
// types, feature names, and address roles.
//
// Error policy (mirrors the pipeline's propagation rules):
//   - corpus/configuration problems (unknown backend, unsupported file
//     format, invalid requested name) are errors surfaced immediately
//   - per-feature extraction gaps (absent table, missing column) are
//     silently omitted from the output
//   - write-back mismatches are per-item outcomes in a SetReport, never
//     errors
//   - solver non-convergence is invisible to control flow; it lands in the
//     "converged" global feature only
//
// Batch forms are order-preserving sequential applications with no
// cross-instance rollback. Instances are independent, so batches are
// embarrassingly parallel; the helpers stay sequential for determinism of
// error reporting.
package backend
