package cli

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veldt/gridfeat/internal/backend"
	"github.com/veldt/gridfeat/internal/dataset"
	"github.com/veldt/gridfeat/internal/normalize"
	"github.com/veldt/gridfeat/internal/store"
)

// FitOptions holds flags for the fit command.
type FitOptions struct {
	*RootOptions
	Output   string
	Database string
	Name     string
}

// FitResult is the success payload of the fit command.
type FitResult struct {
	ID          string `json:"id"`
	Backend     string `json:"backend"`
	BreakPoints int    `json:"break_points"`
	Fitted      int    `json:"fitted"`
	Absent      int    `json:"absent"`
	Output      string `json:"output,omitempty"`
	Stored      string `json:"stored,omitempty"`
}

// NewFitCommand creates the fit command.
func NewFitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fit <profile.yaml>",
		Short: "Fit a normalizer from a training corpus",
		Long: `Fit quantile normalization functions from a corpus of network files.

The profile describes the backend, the corpus location, sampling, the
quantile resolution, and the features to fit. The fitted artifact can be
written to a file, stored in an artifact registry, or both.

Example:
  gridfeat fit profile.yaml -o norm.json
  gridfeat fit profile.yaml --db artifacts.db --name baseline`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFit(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "out", "o", "", "path to write the fitted artifact")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite artifact registry")
	cmd.Flags().StringVar(&opts.Name, "name", "", "artifact name in the registry (requires --db)")

	return cmd
}

func runFit(opts *FitOptions, profilePath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.Output == "" && opts.Database == "" {
		return commandError(formatter, ErrCodeGeneric, "no destination: pass --out, --db, or both", nil)
	}
	if (opts.Database == "") != (opts.Name == "") {
		return commandError(formatter, ErrCodeGeneric, "--db and --name must be used together", nil)
	}

	profile, err := LoadProfile(profilePath)
	if err != nil {
		return commandError(formatter, ErrCodeProfileLoad, err.Error(), nil)
	}
	formatter.VerboseLog("Profile loaded from %s", profilePath)

	n, err := normalize.Fit(profile.Config())
	if err != nil {
		return fitError(formatter, err)
	}
	fitted, absent := n.Counts()
	formatter.VerboseLog("Fitted %d function(s), %d pair(s) absent from corpus", fitted, absent)

	result := FitResult{
		ID:          n.ID,
		Backend:     n.BackendName,
		BreakPoints: n.BreakPoints,
		Fitted:      fitted,
		Absent:      absent,
	}

	if opts.Output != "" {
		if err := n.SaveFile(opts.Output); err != nil {
			return commandErrorWrap(formatter, ErrCodeWriteFailed, "writing artifact", err)
		}
		result.Output = opts.Output
	}
	if opts.Database != "" {
		if err := storeArtifact(cmd, opts.Database, opts.Name, n); err != nil {
			return commandErrorWrap(formatter, ErrCodeWriteFailed, "storing artifact", err)
		}
		result.Stored = opts.Name
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "Fitted %d function(s) (%d absent) with backend %s\n", fitted, absent, n.BackendName)
	if result.Output != "" {
		fmt.Fprintf(formatter.Writer, "Artifact written to %s\n", result.Output)
	}
	if result.Stored != "" {
		fmt.Fprintf(formatter.Writer, "Artifact stored as %q in %s\n", result.Stored, opts.Database)
	}
	return nil
}

func storeArtifact(cmd *cobra.Command, dbPath, name string, n *normalize.Normalizer) error {
	var buf bytes.Buffer
	if err := n.Save(&buf); err != nil {
		return err
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	return st.Put(cmd.Context(), store.Record{
		ID:          n.ID,
		Name:        name,
		Backend:     n.BackendName,
		BreakPoints: n.BreakPoints,
		Payload:     buf.Bytes(),
	})
}

// fitError maps fit failures onto exit codes: bad input is a command
// error, an unusable corpus is a domain failure.
func fitError(formatter *OutputFormatter, err error) error {
	var nameErr *backend.NameError
	switch {
	case errors.As(err, &nameErr):
		return commandError(formatter, ErrCodeBadName, err.Error(), nameErr.Valid)
	case errors.Is(err, backend.ErrUnknownBackend):
		return commandError(formatter, ErrCodeUnknownBackend, err.Error(), backend.Registered())
	case errors.Is(err, dataset.ErrNoValidFiles):
		_ = formatter.Error(ErrCodeFitFailed, err.Error(), nil)
		return WrapExitError(ExitFailure, "fit failed", err)
	default:
		_ = formatter.Error(ErrCodeFitFailed, err.Error(), nil)
		return WrapExitError(ExitFailure, "fit failed", err)
	}
}

// commandError emits a formatted error and returns an exit-code-2 error.
func commandError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

func commandErrorWrap(formatter *OutputFormatter, code, message string, err error) error {
	_ = formatter.Error(code, fmt.Sprintf("%s: %v", message, err), nil)
	return WrapExitError(ExitCommandError, message, err)
}
