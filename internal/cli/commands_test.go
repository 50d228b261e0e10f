package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldt/gridfeat/internal/normalize"
	"github.com/veldt/gridfeat/internal/testutil"
)

// corpusDir writes a small training corpus and returns its root plus the
// path of one network file inside it.
func corpusDir(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	trainDir := filepath.Join(root, "train")
	require.NoError(t, os.MkdirAll(trainDir, 0o755))

	var first string
	for i, p := range []float64{1, 2, 3, 4} {
		path, err := testutil.WriteNetwork(trainDir, fmt.Sprintf("net_%03d.json", i), testutil.NetworkDoc(p, p+1))
		require.NoError(t, err)
		if first == "" {
			first = path
		}
	}
	return root, first
}

func TestFitCommand_WritesArtifact(t *testing.T) {
	root, _ := corpusDir(t)
	profile := writeProfile(t, fmt.Sprintf(`
data_dir: %s
break_points: 4
features:
  load: [p_mw]
`, root))
	artifact := filepath.Join(t.TempDir(), "norm.json")

	out, _, err := execute(t, "fit", profile, "-o", artifact)
	require.NoError(t, err)
	assert.Contains(t, out, "Fitted")

	n, err := normalize.LoadFile(artifact)
	require.NoError(t, err)
	assert.Equal(t, "pandapower", n.BackendName)
	assert.Equal(t, 4, n.BreakPoints)
	_, ok := n.Function("load", "p_mw")
	assert.True(t, ok)
}

func TestFitCommand_RequiresDestination(t *testing.T) {
	root, _ := corpusDir(t)
	profile := writeProfile(t, fmt.Sprintf("data_dir: %s\n", root))

	_, _, err := execute(t, "fit", profile)

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestFitCommand_BadProfileIsCommandError(t *testing.T) {
	profile := writeProfile(t, "bogus_knob: 1\n")

	_, _, err := execute(t, "fit", profile, "-o", filepath.Join(t.TempDir(), "norm.json"))

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestFitCommand_EmptyCorpusIsFailure(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "train"), 0o755))
	profile := writeProfile(t, fmt.Sprintf("data_dir: %s\n", root))

	_, _, err := execute(t, "fit", profile, "-o", filepath.Join(t.TempDir(), "norm.json"))

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestFitAndApplyThroughRegistry(t *testing.T) {
	root, netFile := corpusDir(t)
	profile := writeProfile(t, fmt.Sprintf(`
data_dir: %s
break_points: 4
features:
  load: [p_mw]
`, root))
	db := filepath.Join(t.TempDir(), "artifacts.db")

	_, _, err := execute(t, "fit", profile, "--db", db, "--name", "baseline")
	require.NoError(t, err)

	out, _, err := execute(t, "--format", "json", "apply", netFile, "--db", db, "--name", "baseline")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var result struct {
		Features map[string]map[string][]float64 `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &result))
	require.Contains(t, result.Features, "load")
	require.Contains(t, result.Features["load"], "p_mw")
	for _, v := range result.Features["load"]["p_mw"] {
		assert.GreaterOrEqual(t, v, -1.0)
		assert.LessOrEqual(t, v, 1.0, "values inside the fitted range stay within the unit interval")
	}
}

func TestApplyCommand_MissingArtifactName(t *testing.T) {
	_, netFile := corpusDir(t)
	db := filepath.Join(t.TempDir(), "artifacts.db")

	_, _, err := execute(t, "apply", netFile, "--db", db, "--name", "nope")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestExtractCommand_JSON(t *testing.T) {
	_, netFile := corpusDir(t)

	out, _, err := execute(t, "--format", "json", "extract", netFile, "--feature", "load:p_mw,q_mvar")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestExtractCommand_GoldenJSON(t *testing.T) {
	dir := t.TempDir()
	netFile, err := testutil.WriteNetwork(dir, "net.json", testutil.NetworkDoc(1, 2))
	require.NoError(t, err)

	out, _, err := execute(t, "--format", "json", "extract", netFile, "--feature", "load:p_mw,q_mvar")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "extract", []byte(out))
}

func TestExtractCommand_InvalidName(t *testing.T) {
	_, netFile := corpusDir(t)

	_, _, err := execute(t, "extract", netFile, "--feature", "load:megawatts")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestExtractCommand_Addresses(t *testing.T) {
	_, netFile := corpusDir(t)

	out, _, err := execute(t, "extract", netFile, "--address", "load:bus")
	require.NoError(t, err)
	assert.Contains(t, out, "load/bus")
}

func TestRunCommand_Converges(t *testing.T) {
	_, netFile := corpusDir(t)
	solved := filepath.Join(t.TempDir(), "solved.json")

	out, _, err := execute(t, "run", netFile, "--out", solved)
	require.NoError(t, err)
	assert.Contains(t, out, "converged")

	_, err = os.Stat(solved)
	assert.NoError(t, err)
}

func TestScanCommand(t *testing.T) {
	root, _ := corpusDir(t)

	out, _, err := execute(t, "scan", filepath.Join(root, "train"))
	require.NoError(t, err)
	assert.Contains(t, out, "net_000.json")
}

func TestScanCommand_EmptyDirIsFailure(t *testing.T) {
	_, _, err := execute(t, "scan", t.TempDir())

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestArtifactsListAndExport(t *testing.T) {
	root, _ := corpusDir(t)
	profile := writeProfile(t, fmt.Sprintf(`
data_dir: %s
break_points: 4
features:
  load: [p_mw]
`, root))
	db := filepath.Join(t.TempDir(), "artifacts.db")

	_, _, err := execute(t, "fit", profile, "--db", db, "--name", "baseline")
	require.NoError(t, err)

	out, _, err := execute(t, "artifacts", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "baseline")
	assert.Contains(t, out, "pandapower")

	out, _, err = execute(t, "artifacts", "export", "baseline", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, `"backend":"pandapower"`)
}
