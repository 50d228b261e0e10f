// Package pandapower implements the backend contract over pandapower-style
// JSON network files.
//
// The file schema is one JSON object holding the scalar globals (f_hz,
// sn_mva, converged) and one column-oriented table per object type, with
// power-flow results in separate res_<object> tables. Extraction joins the
// two under a res_ column prefix, the way the upstream tool keeps static
// parameters in net.bus and results in net.res_bus.
//
// The engine does not solve power flow itself; a Solver collaborator is
// injected at construction and its failure is swallowed into the converged
// flag, never an error.
package pandapower

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/veldt/gridfeat/internal/backend"
	"github.com/veldt/gridfeat/internal/grid"
)

// Name is this engine's registry name.
const Name = "pandapower"

func init() {
	backend.Register(Name, func() backend.Backend { return New() })
}

// Engine is the pandapower backend.
type Engine struct {
	solver Solver
}

// Option configures an Engine.
type Option func(*Engine)

// WithSolver overrides the power-flow solver. Used by pipelines that plug
// in a real solver service and by tests that need failure paths.
func WithSolver(s Solver) Option {
	return func(e *Engine) {
		e.solver = s
	}
}

// New creates a pandapower engine. The default solver is ApproxSolver.
func New(opts ...Option) *Engine {
	e := &Engine{solver: ApproxSolver{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements backend.Backend.
func (e *Engine) Name() string { return Name }

// ValidExtensions implements backend.Backend.
func (e *Engine) ValidExtensions() []string { return []string{".json"} }

// ValidFeatureNames implements backend.Backend.
func (e *Engine) ValidFeatureNames() map[string][]string {
	return copyRegistry(validFeatureNames)
}

// ValidAddressNames implements backend.Backend.
func (e *Engine) ValidAddressNames() map[string][]string {
	return copyRegistry(validAddressNames)
}

// LoadNetwork implements backend.Backend.
func (e *Engine) LoadNetwork(path string) (backend.Network, error) {
	if !strings.HasSuffix(path, ".json") {
		return nil, fmt.Errorf("%w: %s", backend.ErrUnsupportedFormat, path)
	}
	return loadNetworkFile(path)
}

// SaveNetwork implements backend.Backend.
func (e *Engine) SaveNetwork(net backend.Network, path string) error {
	n, err := e.own(net)
	if err != nil {
		return err
	}
	data, err := encodeNetwork(n)
	if err != nil {
		return fmt.Errorf("encode network: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// GetFeatures implements backend.Backend. Requested names are validated
// against the registry up front; pairs the instance simply does not carry
// (empty table, no results yet) are omitted from the output.
func (e *Engine) GetFeatures(net backend.Network, sel grid.Selection) (grid.Features, error) {
	n, err := e.own(net)
	if err != nil {
		return nil, err
	}
	if err := backend.CheckFeatureNames(e, sel); err != nil {
		return nil, err
	}

	x := grid.Features{}
	for _, k := range grid.SortedKeys(sel) {
		if k == GlobalKey {
			x[k] = globalFeatures(n, sel[k])
			continue
		}
		m := merged(n, k)
		if m == nil {
			continue
		}
		cols := map[string][]float32{}
		for _, f := range sel[k] {
			src, ok := m.num[f]
			if !ok {
				continue
			}
			col := make([]float32, len(src))
			for i, v := range src {
				col[i] = float32(v)
			}
			cols[f] = col
		}
		x[k] = cols
	}
	return grid.CleanFeatures(x), nil
}

func globalFeatures(n *Network, names []string) map[string][]float32 {
	cols := map[string][]float32{}
	for _, name := range names {
		switch name {
		case "converged":
			v := float32(0)
			if n.Converged {
				v = 1
			}
			cols[name] = []float32{v}
		case "f_hz":
			cols[name] = []float32{float32(n.FHz)}
		case "sn_mva":
			cols[name] = []float32{float32(n.SnMVA)}
		}
	}
	return cols
}

// GetAddresses implements backend.Backend. Raw identifiers are encoded to
// dense integers with a lookup built fresh for this instance.
func (e *Engine) GetAddresses(net backend.Network, sel grid.Selection) (grid.Addresses, error) {
	n, err := e.own(net)
	if err != nil {
		return nil, err
	}
	if err := backend.CheckAddressNames(e, sel); err != nil {
		return nil, err
	}

	raw := grid.RawAddresses{}
	for _, k := range grid.SortedKeys(sel) {
		m := merged(n, k)
		if m == nil {
			continue
		}
		cols := map[string][]string{}
		for _, role := range sel[k] {
			if col, ok := m.addr[role]; ok {
				cols[role] = col
			}
		}
		if len(cols) > 0 {
			raw[k] = cols
		}
	}
	return grid.CleanAddresses(grid.EncodeAddresses(raw)), nil
}

// SetFeatures implements backend.Backend. res_-prefixed features are
// routed into the results table, everything else into the static table.
// Mismatches are per-item outcomes, never errors; the batch continues.
func (e *Engine) SetFeatures(net backend.Network, y grid.Features) *backend.SetReport {
	report := &backend.SetReport{}
	n, err := e.own(net)
	if err != nil {
		for _, k := range grid.SortedKeys(y) {
			for _, f := range grid.SortedKeys(y[k]) {
				report.Skipped = append(report.Skipped, backend.SkippedFeature{Object: k, Feature: f, Reason: err.Error()})
			}
		}
		return report
	}

	for _, k := range grid.SortedKeys(y) {
		for _, f := range grid.SortedKeys(y[k]) {
			if reason := setColumn(n, k, f, y[k][f]); reason != "" {
				slog.Warn("feature not settable", "backend", Name, "object", k, "feature", f, "reason", reason)
				report.Skipped = append(report.Skipped, backend.SkippedFeature{Object: k, Feature: f, Reason: reason})
				continue
			}
			report.Applied++
		}
	}
	return report
}

func setColumn(n *Network, object, feature string, col []float32) string {
	if object == GlobalKey {
		return setGlobal(n, feature, col)
	}

	valid, ok := validFeatureNames[object]
	if !ok {
		return "unknown object type"
	}
	found := false
	for _, name := range valid {
		if name == feature {
			found = true
			break
		}
	}
	if !found {
		return "unknown feature"
	}

	base := n.Tables[object]
	if base == nil {
		return "no such table in this network"
	}
	if len(col) != base.Rows() {
		return fmt.Sprintf("length mismatch: %d values for %d rows", len(col), base.Rows())
	}

	values := make([]float64, len(col))
	for i, v := range col {
		values[i] = float64(v)
	}

	if rest, isRes := strings.CutPrefix(feature, "res_"); isRes {
		res := n.Tables["res_"+object]
		if res == nil {
			res = &Table{
				Index: append([]string(nil), base.Index...),
				Num:   map[string][]float64{},
				Str:   map[string][]string{},
			}
			n.Tables["res_"+object] = res
		}
		res.Num[rest] = values
		return ""
	}
	base.Num[feature] = values
	return ""
}

func setGlobal(n *Network, feature string, col []float32) string {
	if len(col) != 1 {
		return fmt.Sprintf("global feature takes 1 value, got %d", len(col))
	}
	switch feature {
	case "f_hz":
		n.FHz = float64(col[0])
	case "sn_mva":
		n.SnMVA = float64(col[0])
	case "converged":
		n.Converged = col[0] != 0
	default:
		return "unknown global feature"
	}
	return ""
}

// RunNetwork implements backend.Backend. Solver failure is the declared
// ignore policy: the converged flag records it and control returns
// normally, with no retry.
func (e *Engine) RunNetwork(net backend.Network, opts *backend.RunOptions) {
	n, err := e.own(net)
	if err != nil {
		slog.Warn("run skipped", "backend", Name, "error", err)
		return
	}
	if opts == nil {
		opts = &backend.RunOptions{}
	}
	if err := e.solver.Solve(n, opts); err != nil {
		slog.Warn("power flow did not converge", "backend", Name, "error", err)
		n.Converged = false
		return
	}
	n.Converged = true
}

func (e *Engine) own(net backend.Network) (*Network, error) {
	n, ok := net.(*Network)
	if !ok {
		return nil, fmt.Errorf("network from engine %q, want %q", net.Engine(), Name)
	}
	return n, nil
}
