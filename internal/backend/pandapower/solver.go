package pandapower

import (
	"strings"

	"github.com/veldt/gridfeat/internal/backend"
	"github.com/veldt/gridfeat/internal/grid"
)

// Solver computes power-flow results for a network, filling its res_
// tables. The engine treats the solver as an opaque collaborator: a nil
// error means converged, a non-nil error means the run did not converge.
type Solver interface {
	Solve(net *Network, opts *backend.RunOptions) error
}

// ApproxSolver is the default stand-in solver. It does not solve the
// power-flow equations: it materializes a results table per object type,
// mirroring each setpoint column into its result counterpart and zeroing
// the rest. That is enough to exercise the table-merge path and the
// converged flag end to end.
type ApproxSolver struct{}

// Solve implements Solver.
func (ApproxSolver) Solve(net *Network, opts *backend.RunOptions) error {
	for _, object := range grid.SortedKeys(net.Tables) {
		if strings.HasPrefix(object, "res_") {
			continue
		}
		base := net.Tables[object]
		names, ok := validFeatureNames[object]
		if !ok || base.Rows() == 0 {
			continue
		}

		res := &Table{
			Index: append([]string(nil), base.Index...),
			Num:   map[string][]float64{},
			Str:   map[string][]string{},
		}
		for _, name := range names {
			rest, isRes := strings.CutPrefix(name, "res_")
			if !isRes {
				continue
			}
			col := make([]float64, base.Rows())
			if src, ok := base.Num[sourceColumn(rest)]; ok {
				copy(col, src)
			}
			res.Num[rest] = col
		}
		if len(res.Num) > 0 {
			net.Tables["res_"+object] = res
		}
	}
	return nil
}

// sourceColumn maps a result column back to the setpoint it mirrors.
// Bus voltages default to the solved magnitude a flat start would give.
func sourceColumn(result string) string {
	switch result {
	case "vm_pu", "vm_from_pu", "vm_to_pu", "vm_hv_pu", "vm_lv_pu":
		return "vm_pu"
	case "p_mw", "p_from_mw", "p_hv_mw":
		return "p_mw"
	case "q_mvar", "q_from_mvar", "q_hv_mvar":
		return "q_mvar"
	default:
		return result
	}
}
