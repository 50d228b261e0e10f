package normalize

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldt/gridfeat/internal/backend"
	_ "github.com/veldt/gridfeat/internal/backend/pandapower"
	"github.com/veldt/gridfeat/internal/grid"
	"github.com/veldt/gridfeat/internal/testutil"
)

func testNormalizer() *Normalizer {
	return &Normalizer{
		ID:          "test",
		BackendName: "pandapower",
		BreakPoints: 4,
		functions: map[string]map[string]Function{
			"load": {
				"p_mw":   Piecewise{Values: []float64{0, 10}, Targets: []float64{-1, 1}},
				"q_mvar": nil, // requested at fit time, never observed
			},
		},
	}
}

func TestApply_TransformsFittedPairs(t *testing.T) {
	n := testNormalizer()

	out := n.Apply(grid.Features{"load": {"p_mw": {0, 5, 10}}})

	assert.Equal(t, []float32{-1, 0, 1}, out["load"]["p_mw"])
}

func TestApply_PassThroughUnknownKeys(t *testing.T) {
	n := testNormalizer()
	x := grid.Features{
		"load": {"p_mw": {5}, "scaling": {0.9}},
		"gen":  {"vm_pu": {1.02, 1.01}},
	}

	out := n.Apply(x)

	// Unknown feature under a known object type: unchanged values.
	assert.Equal(t, []float32{0.9}, out["load"]["scaling"])
	// Object type entirely absent from the table: unchanged values.
	assert.Equal(t, []float32{1.02, 1.01}, out["gen"]["vm_pu"])
}

func TestApply_FittedAbsentPassesThrough(t *testing.T) {
	n := testNormalizer()

	out := n.Apply(grid.Features{"load": {"q_mvar": {3.5}}})

	assert.Equal(t, []float32{3.5}, out["load"]["q_mvar"])
}

func TestApply_NeverMutatesInput(t *testing.T) {
	n := testNormalizer()
	x := grid.Features{"load": {"p_mw": {0, 10}}}

	out := n.Apply(x)

	assert.Equal(t, []float32{0, 10}, x["load"]["p_mw"])
	out["load"]["p_mw"][0] = 42
	assert.Equal(t, float32(0), x["load"]["p_mw"][0], "output must not share backing arrays with input")
}

func TestFittedSelectionAndCounts(t *testing.T) {
	n := testNormalizer()

	sel := n.FittedSelection()
	fitted, absent := n.Counts()

	assert.Equal(t, grid.Selection{"load": {"p_mw"}}, sel)
	assert.Equal(t, 1, fitted)
	assert.Equal(t, 1, absent)
}

// writeTrainCorpus writes networks under <root>/train and returns root.
func writeTrainCorpus(t *testing.T, docs ...map[string]any) string {
	t.Helper()
	root := t.TempDir()
	trainDir := filepath.Join(root, TrainSubdir)
	require.NoError(t, os.MkdirAll(trainDir, 0o755))
	for i, doc := range docs {
		_, err := testutil.WriteNetwork(trainDir, fmt.Sprintf("net_%03d.json", i), doc)
		require.NoError(t, err)
	}
	return root
}

func TestFit_SingleLoadDegeneratesToSubtraction(t *testing.T) {
	root := writeTrainCorpus(t, testutil.NetworkDoc(5.0))

	n, err := Fit(Config{
		DataDir:     root,
		BreakPoints: 4,
		Features:    grid.Selection{"load": {"p_mw"}},
	})
	require.NoError(t, err)

	fn, ok := n.Function("load", "p_mw")
	require.True(t, ok, "a non-absent function must be fitted for the observed pair")
	assert.IsType(t, Subtract{}, fn)

	out := n.Apply(grid.Features{"load": {"p_mw": {5.0}}})
	assert.Equal(t, []float32{0}, out["load"]["p_mw"])
}

func TestFit_SingleBreakPoint(t *testing.T) {
	root := writeTrainCorpus(t, testutil.NetworkDoc(3, 1, 2))

	n, err := Fit(Config{
		DataDir:     root,
		BreakPoints: 1,
		Features:    grid.Selection{"load": {"p_mw"}},
	})
	require.NoError(t, err)

	fn, ok := n.Function("load", "p_mw")
	require.True(t, ok)
	sub, ok := fn.(Subtract)
	require.True(t, ok)
	assert.Equal(t, 1.0, sub.V, "the single quantile is the observed minimum")
}

func TestFit_NegativeBreakPoints(t *testing.T) {
	root := writeTrainCorpus(t, testutil.NetworkDoc(5.0))

	_, err := Fit(Config{
		DataDir:     root,
		BreakPoints: -4,
		Features:    grid.Selection{"load": {"p_mw"}},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "break points")
}

func TestFit_UnobservedPairIsAbsent(t *testing.T) {
	root := writeTrainCorpus(t, testutil.NetworkDoc(5.0))

	n, err := Fit(Config{
		DataDir:     root,
		BreakPoints: 4,
		Features:    grid.Selection{"load": {"p_mw"}, "gen": {"p_mw"}},
	})
	require.NoError(t, err)

	_, ok := n.Function("gen", "p_mw")
	assert.False(t, ok, "pair never observed in the corpus must be absent")

	// And absent applies as identity.
	out := n.Apply(grid.Features{"gen": {"p_mw": {7}}})
	assert.Equal(t, []float32{7}, out["gen"]["p_mw"])
}

func TestFit_InvalidFeatureName(t *testing.T) {
	root := writeTrainCorpus(t, testutil.NetworkDoc(5.0))

	_, err := Fit(Config{
		DataDir:  root,
		Features: grid.Selection{"load": {"megawatts"}},
	})

	var nameErr *backend.NameError
	assert.ErrorAs(t, err, &nameErr)
}

func TestFit_EmptyCorpusIsFatal(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, TrainSubdir), 0o755))

	_, err := Fit(Config{DataDir: root})

	assert.Error(t, err)
}

func TestFit_DeterministicOnFixedSampleList(t *testing.T) {
	root := writeTrainCorpus(t,
		testutil.NetworkDoc(1, 2, 3),
		testutil.NetworkDoc(2, 4),
		testutil.NetworkDoc(0.5),
	)
	cfg := Config{
		DataDir:     root,
		BreakPoints: 16,
		Features:    grid.Selection{"load": {"p_mw", "q_mvar"}},
	}

	first, err := Fit(cfg)
	require.NoError(t, err)
	second, err := Fit(cfg)
	require.NoError(t, err)

	x := grid.Features{"load": {"p_mw": {0, 1.7, 9}, "q_mvar": {0.01}}}
	assert.Equal(t, first.Apply(x), second.Apply(x))
	assert.Equal(t, first.functions, second.functions)
}

func TestFit_BreakpointOutputsWithinUnitInterval(t *testing.T) {
	root := writeTrainCorpus(t, testutil.NetworkDoc(1, 2, 3, 4, 5, 6, 7, 8))

	n, err := Fit(Config{
		DataDir:     root,
		BreakPoints: 8,
		Features:    grid.Selection{"load": {"p_mw"}},
	})
	require.NoError(t, err)

	fn, ok := n.Function("load", "p_mw")
	require.True(t, ok)
	pw, ok := fn.(Piecewise)
	require.True(t, ok)
	for _, v := range pw.Values {
		y := pw.Eval(v)
		assert.GreaterOrEqual(t, y, -1.0)
		assert.LessOrEqual(t, y, 1.0)
	}
}
