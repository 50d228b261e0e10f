package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and captures its output.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "gridfeat", cmd.Use)
	assert.Contains(t, cmd.Long, "power grid")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"fit", "extract", "apply", "run", "scan", "artifacts"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestFitCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	fitCmd, _, err := cmd.Find([]string{"fit"})
	require.NoError(t, err)

	outFlag := fitCmd.Flags().Lookup("out")
	require.NotNil(t, outFlag)
	assert.Equal(t, "o", outFlag.Shorthand)

	require.NotNil(t, fitCmd.Flags().Lookup("db"))
	require.NotNil(t, fitCmd.Flags().Lookup("name"))
}

func TestExtractCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	extractCmd, _, err := cmd.Find([]string{"extract"})
	require.NoError(t, err)

	backendFlag := extractCmd.Flags().Lookup("backend")
	require.NotNil(t, backendFlag)
	assert.Equal(t, "pandapower", backendFlag.DefValue)

	require.NotNil(t, extractCmd.Flags().Lookup("feature"))
	require.NotNil(t, extractCmd.Flags().Lookup("address"))
}

func TestRunCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	runCmd, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)

	require.NotNil(t, runCmd.Flags().Lookup("max-iterations"))
	require.NotNil(t, runCmd.Flags().Lookup("enforce-q-lims"))
	require.NotNil(t, runCmd.Flags().Lookup("out"))
}

func TestScanCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	scanCmd, _, err := cmd.Find([]string{"scan"})
	require.NoError(t, err)

	require.NotNil(t, scanCmd.Flags().Lookup("shuffle"))
	require.NotNil(t, scanCmd.Flags().Lookup("seed"))
	require.NotNil(t, scanCmd.Flags().Lookup("n-samples"))
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	_, _, err := execute(t, "--format", "invalid", "scan", ".")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestUnknownBackendIsCommandError(t *testing.T) {
	_, _, err := execute(t, "scan", t.TempDir(), "--backend", "nonesuch")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
