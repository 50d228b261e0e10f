package pandapower

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/veldt/gridfeat/internal/codec"
	"github.com/veldt/gridfeat/internal/grid"
)

// Network is a pandapower-style grid model: scalar grid-level attributes
// plus one column-oriented table per object type. Power-flow results live
// in separate res_<object> tables, created by a run.
type Network struct {
	FHz       float64
	SnMVA     float64
	Converged bool
	Tables    map[string]*Table
}

// Engine implements backend.Network.
func (n *Network) Engine() string { return Name }

// Table is one column-oriented object table. The index carries the
// engine's native row identifiers; numeric and string columns are kept
// apart because addresses are identifiers, not values.
type Table struct {
	Index []string
	Num   map[string][]float64
	Str   map[string][]string
}

// Rows returns the instance count.
func (t *Table) Rows() int { return len(t.Index) }

// jsonTable is the on-disk shape of a table.
type jsonTable struct {
	Index   []any            `json:"index"`
	Columns map[string][]any `json:"columns"`
}

// decodeNetwork parses the engine's JSON file format: an object with the
// scalar globals f_hz, sn_mva, converged and a table per remaining key.
func decodeNetwork(data []byte) (*Network, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse network: %w", err)
	}

	net := &Network{FHz: 50, SnMVA: 1, Tables: map[string]*Table{}}
	for key, msg := range raw {
		switch key {
		case "f_hz":
			if err := json.Unmarshal(msg, &net.FHz); err != nil {
				return nil, fmt.Errorf("parse f_hz: %w", err)
			}
		case "sn_mva":
			if err := json.Unmarshal(msg, &net.SnMVA); err != nil {
				return nil, fmt.Errorf("parse sn_mva: %w", err)
			}
		case "converged":
			if err := json.Unmarshal(msg, &net.Converged); err != nil {
				return nil, fmt.Errorf("parse converged: %w", err)
			}
		default:
			table, err := decodeTable(msg)
			if err != nil {
				return nil, fmt.Errorf("parse table %q: %w", key, err)
			}
			net.Tables[key] = table
		}
	}
	return net, nil
}

func decodeTable(msg json.RawMessage) (*Table, error) {
	var jt jsonTable
	if err := json.Unmarshal(msg, &jt); err != nil {
		return nil, err
	}

	table := &Table{
		Index: make([]string, len(jt.Index)),
		Num:   map[string][]float64{},
		Str:   map[string][]string{},
	}
	for i, v := range jt.Index {
		table.Index[i] = scalarString(v)
	}

	for name, col := range jt.Columns {
		if len(col) != len(jt.Index) {
			return nil, fmt.Errorf("column %q has %d values for %d rows", name, len(col), len(jt.Index))
		}
		if isStringColumn(col) {
			out := make([]string, len(col))
			for i, v := range col {
				out[i] = scalarString(v)
			}
			table.Str[name] = out
			continue
		}
		out := make([]float64, len(col))
		for i, v := range col {
			out[i] = scalarFloat(v)
		}
		table.Num[name] = out
	}
	return table, nil
}

// isStringColumn reports whether any entry is a string; mixed columns are
// treated as string columns (identifiers).
func isStringColumn(col []any) bool {
	for _, v := range col {
		if _, ok := v.(string); ok {
			return true
		}
	}
	return false
}

func scalarString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case bool:
		if val {
			return "true"
		}
		return "false"
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}

func scalarFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case bool:
		if val {
			return 1
		}
		return 0
	case nil:
		return math.NaN()
	default:
		return math.NaN()
	}
}

// encodeNetwork renders the network back to canonical JSON. Non-finite
// numerics are sanitized with the same policy extraction uses, so a saved
// file always parses back without nulls.
func encodeNetwork(net *Network) ([]byte, error) {
	doc := map[string]any{
		"f_hz":      net.FHz,
		"sn_mva":    net.SnMVA,
		"converged": net.Converged,
	}
	for _, key := range grid.SortedKeys(net.Tables) {
		table := net.Tables[key]
		columns := map[string]any{}
		for _, name := range grid.SortedKeys(table.Num) {
			col := make([]any, len(table.Num[name]))
			for i, v := range table.Num[name] {
				col[i] = clampValue(v)
			}
			columns[name] = col
		}
		for _, name := range grid.SortedKeys(table.Str) {
			col := make([]any, len(table.Str[name]))
			for i, v := range table.Str[name] {
				col[i] = v
			}
			columns[name] = col
		}
		index := make([]any, len(table.Index))
		for i, id := range table.Index {
			index[i] = id
		}
		doc[key] = map[string]any{"index": index, "columns": columns}
	}
	return codec.MarshalCanonical(doc)
}

// loadNetworkFile reads and parses one network file.
func loadNetworkFile(path string) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read network: %w", err)
	}
	return decodeNetwork(data)
}
