package pandapower

import (
	"math"
	"strconv"
)

// infClamp is the finite sentinel substituted for infinite values during
// extraction.
const infClamp = 99999

// clampValue applies the extraction numeric policy: infinities clamp to
// the finite sentinel, missing entries default to zero.
func clampValue(v float64) float64 {
	switch {
	case math.IsInf(v, 1):
		return infClamp
	case math.IsInf(v, -1):
		return -infClamp
	case math.IsNaN(v):
		return 0
	default:
		return v
	}
}

// mergedTable is the per-object view extraction reads from: static
// parameters joined with power-flow results under a res_ prefix, plus the
// engine's address columns.
type mergedTable struct {
	rows int
	num  map[string][]float64
	addr map[string][]string
}

// merged builds the extraction view for one object type, or nil when the
// network has no (or an empty) table for it. A missing or misaligned
// results table is tolerated: its columns are simply absent from the view.
func merged(net *Network, object string) *mergedTable {
	base := net.Tables[object]
	if base == nil || base.Rows() == 0 {
		return nil
	}

	m := &mergedTable{
		rows: base.Rows(),
		num:  map[string][]float64{},
		addr: map[string][]string{},
	}

	for name, col := range base.Num {
		clamped := make([]float64, len(col))
		for i, v := range col {
			clamped[i] = clampValue(v)
		}
		m.num[name] = clamped
	}

	// tap_side is a categorical string column in the file; extraction
	// sees it as hv=0, lv=1.
	if object == "trafo" {
		if sides, ok := base.Str["tap_side"]; ok {
			col := make([]float64, len(sides))
			for i, side := range sides {
				if side == "lv" {
					col[i] = 1
				}
			}
			m.num["tap_side"] = col
		}
	}

	// Join the results table under the res_ prefix. Joins only align when
	// the row counts agree; anything else means no results for this view.
	if res := net.Tables["res_"+object]; res != nil && res.Rows() == base.Rows() {
		for name, col := range res.Num {
			clamped := make([]float64, len(col))
			for i, v := range col {
				clamped[i] = clampValue(v)
			}
			m.num["res_"+name] = clamped
		}
	}

	mergeAddresses(m, base, object)
	return m
}

// mergeAddresses fills the view's address columns: the synthetic id from
// the index, engine reference columns as string identifiers, and the
// synthesized per-type names.
func mergeAddresses(m *mergedTable, base *Table, object string) {
	m.addr["id"] = append([]string(nil), base.Index...)

	for _, role := range validAddressNames[object] {
		switch role {
		case "id":
			// already set from the index
		case "name":
			if namedObjects[object] {
				names := make([]string, len(base.Index))
				for i, id := range base.Index {
					names[i] = object + "_" + id
				}
				m.addr["name"] = names
			}
		case "element":
			// poly_cost references are "<et>_<element>" so that a cost
			// row can point at a gen or an sgen without ambiguity.
			et, okET := base.Str["et"]
			elem := elementColumn(base)
			if okET && elem != nil && len(et) == len(elem) {
				refs := make([]string, len(et))
				for i := range et {
					refs[i] = et[i] + "_" + elem[i]
				}
				m.addr["element"] = refs
			}
		default:
			if col, ok := base.Str[role]; ok {
				m.addr[role] = append([]string(nil), col...)
			} else if col, ok := base.Num[role]; ok {
				ids := make([]string, len(col))
				for i, v := range col {
					ids[i] = strconv.FormatFloat(v, 'g', -1, 64)
				}
				m.addr[role] = ids
			}
		}
	}
}

func elementColumn(base *Table) []string {
	if col, ok := base.Str["element"]; ok {
		return col
	}
	if col, ok := base.Num["element"]; ok {
		ids := make([]string, len(col))
		for i, v := range col {
			ids[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		return ids
	}
	return nil
}
