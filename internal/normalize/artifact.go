package normalize

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/veldt/gridfeat/internal/codec"
	"github.com/veldt/gridfeat/internal/grid"
)

// ArtifactVersion is the persisted function-table schema version.
const ArtifactVersion = 1

// Function kinds in the persisted artifact. The subtract/piecewise
// distinction is preserved verbatim; collapsing them would change
// extrapolation behavior.
const (
	kindAbsent    = "absent"
	kindSubtract  = "subtract"
	kindPiecewise = "piecewise"
)

// Save serializes the function table as canonical JSON. The encoding is
// byte-deterministic for a given table, so saved artifacts diff cleanly
// and golden tests can compare them directly.
func (n *Normalizer) Save(w io.Writer) error {
	functions := map[string]any{}
	for _, k := range grid.SortedKeys(n.functions) {
		fk := map[string]any{}
		for _, f := range grid.SortedKeys(n.functions[k]) {
			doc, err := functionDoc(n.functions[k][f])
			if err != nil {
				return fmt.Errorf("save %s/%s: %w", k, f, err)
			}
			fk[f] = doc
		}
		functions[k] = fk
	}

	data, err := codec.MarshalCanonical(map[string]any{
		"version":      ArtifactVersion,
		"id":           n.ID,
		"backend":      n.BackendName,
		"break_points": n.BreakPoints,
		"functions":    functions,
	})
	if err != nil {
		return fmt.Errorf("save normalizer: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("save normalizer: %w", err)
	}
	return nil
}

func functionDoc(fn Function) (map[string]any, error) {
	switch f := fn.(type) {
	case nil:
		return map[string]any{"kind": kindAbsent}, nil
	case Subtract:
		return map[string]any{"kind": kindSubtract, "value": f.V}, nil
	case Piecewise:
		values := make([]any, len(f.Values))
		targets := make([]any, len(f.Targets))
		for i := range f.Values {
			values[i] = f.Values[i]
			targets[i] = f.Targets[i]
		}
		return map[string]any{"kind": kindPiecewise, "values": values, "targets": targets}, nil
	default:
		return nil, fmt.Errorf("unknown function type %T", fn)
	}
}

// SaveFile saves the normalizer to a file.
func (n *Normalizer) SaveFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save normalizer: %w", err)
	}
	defer file.Close()
	if err := n.Save(file); err != nil {
		return err
	}
	return file.Close()
}

type artifactDoc struct {
	Version     int                                `json:"version"`
	ID          string                             `json:"id"`
	Backend     string                             `json:"backend"`
	BreakPoints int                                `json:"break_points"`
	Functions   map[string]map[string]functionSpec `json:"functions"`
}

type functionSpec struct {
	Kind    string    `json:"kind"`
	Value   float64   `json:"value"`
	Values  []float64 `json:"values"`
	Targets []float64 `json:"targets"`
}

// Load restores a normalizer from its serialized form. The restored table
// applies identically to the saved one for all inputs, including values
// beyond the fitted quantile range.
func Load(r io.Reader) (*Normalizer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("load normalizer: %w", err)
	}

	var doc artifactDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("load normalizer: %w", err)
	}
	if doc.Version != ArtifactVersion {
		return nil, fmt.Errorf("load normalizer: unsupported artifact version %d", doc.Version)
	}

	functions := make(map[string]map[string]Function, len(doc.Functions))
	for k, fk := range doc.Functions {
		functions[k] = make(map[string]Function, len(fk))
		for f, spec := range fk {
			fn, err := specFunction(spec)
			if err != nil {
				return nil, fmt.Errorf("load normalizer %s/%s: %w", k, f, err)
			}
			functions[k][f] = fn
		}
	}

	return &Normalizer{
		ID:          doc.ID,
		BackendName: doc.Backend,
		BreakPoints: doc.BreakPoints,
		functions:   functions,
	}, nil
}

func specFunction(spec functionSpec) (Function, error) {
	switch spec.Kind {
	case kindAbsent:
		return nil, nil
	case kindSubtract:
		return Subtract{V: spec.Value}, nil
	case kindPiecewise:
		if len(spec.Values) < 2 || len(spec.Values) != len(spec.Targets) {
			return nil, fmt.Errorf("malformed piecewise function: %d values, %d targets", len(spec.Values), len(spec.Targets))
		}
		for i := 1; i < len(spec.Values); i++ {
			if spec.Values[i] <= spec.Values[i-1] {
				return nil, fmt.Errorf("piecewise breakpoints not strictly increasing at %d", i)
			}
		}
		return Piecewise{Values: spec.Values, Targets: spec.Targets}, nil
	default:
		return nil, fmt.Errorf("unknown function kind %q", spec.Kind)
	}
}

// LoadFile loads a normalizer from a file.
func LoadFile(path string) (*Normalizer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load normalizer: %w", err)
	}
	defer file.Close()
	return Load(file)
}
