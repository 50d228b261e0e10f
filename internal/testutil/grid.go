// Package testutil provides deterministic fixtures for tests: small
// network documents, file writers, and fixed solver doubles. Fixed inputs
// keep extraction and fitting byte-stable, which the golden tests rely on.
package testutil

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/veldt/gridfeat/internal/backend"
	"github.com/veldt/gridfeat/internal/backend/pandapower"
)

// NetworkDoc builds a two-bus network document with one load per entry of
// loadP, alternating between the buses. The document matches the
// pandapower engine's JSON file schema.
func NetworkDoc(loadP ...float64) map[string]any {
	busIndex := []any{"0", "1"}
	loadIndex := make([]any, len(loadP))
	loadBus := make([]any, len(loadP))
	loadQ := make([]any, len(loadP))
	p := make([]any, len(loadP))
	for i, v := range loadP {
		loadIndex[i] = strconv.Itoa(i)
		loadBus[i] = strconv.Itoa(i % 2)
		loadQ[i] = v / 10
		p[i] = v
	}

	return map[string]any{
		"f_hz":      50.0,
		"sn_mva":    1.0,
		"converged": false,
		"bus": map[string]any{
			"index": busIndex,
			"columns": map[string]any{
				"vn_kv":      []any{110.0, 110.0},
				"in_service": []any{true, true},
			},
		},
		"load": map[string]any{
			"index": loadIndex,
			"columns": map[string]any{
				"bus":    loadBus,
				"p_mw":   p,
				"q_mvar": loadQ,
			},
		},
	}
}

// WriteNetwork writes a network document as JSON under dir and returns its
// path.
func WriteNetwork(dir, name string, doc map[string]any) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// ErrDiverged is the error FailSolver reports.
var ErrDiverged = errors.New("load flow diverged")

// FailSolver always fails to converge. It exercises the swallowed
// non-convergence path.
type FailSolver struct{}

// Solve implements pandapower.Solver.
func (FailSolver) Solve(net *pandapower.Network, opts *backend.RunOptions) error {
	return ErrDiverged
}
