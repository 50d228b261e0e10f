package cli

import (
	"bytes"
	"errors"

	"github.com/spf13/cobra"

	"github.com/veldt/gridfeat/internal/backend"
	"github.com/veldt/gridfeat/internal/normalize"
	"github.com/veldt/gridfeat/internal/store"
)

// ApplyOptions holds flags for the apply command.
type ApplyOptions struct {
	*RootOptions
	Artifact string
	Database string
	Name     string
	Features []string
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply <network-file>",
		Short: "Apply a fitted normalizer to a network file",
		Long: `Extract features from a network file and normalize them with a
previously fitted artifact.

The artifact comes from a file (--artifact) or from an artifact registry
(--db with --name). Without a feature selection the artifact's own fitted
selection is extracted.

Example:
  gridfeat apply net.json --artifact norm.json --format json
  gridfeat apply net.json --db artifacts.db --name baseline`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Artifact, "artifact", "", "path to a fitted artifact file")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite artifact registry")
	cmd.Flags().StringVar(&opts.Name, "name", "", "artifact name in the registry (requires --db)")
	cmd.Flags().StringArrayVar(&opts.Features, "feature", nil, "feature selection as object:name,name (repeatable)")

	return cmd
}

func runApply(opts *ApplyOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	n, err := loadArtifact(opts, cmd)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return commandError(formatter, ErrCodeNotFound, err.Error(), nil)
		}
		return commandErrorWrap(formatter, ErrCodeNotFound, "loading artifact", err)
	}
	formatter.VerboseLog("Artifact %s (backend %s) loaded", n.ID, n.BackendName)

	b, err := backend.Get(n.BackendName)
	if err != nil {
		return commandError(formatter, ErrCodeUnknownBackend, err.Error(), backend.Registered())
	}

	sel, err := ParseSelection(opts.Features)
	if err != nil {
		return commandError(formatter, ErrCodeBadSelection, err.Error(), nil)
	}
	if sel == nil {
		sel = n.FittedSelection()
	}

	net, err := b.LoadNetwork(path)
	if err != nil {
		return commandErrorWrap(formatter, ErrCodeLoadFailed, "loading network", err)
	}
	x, err := b.GetFeatures(net, sel)
	if err != nil {
		return nameOrGenericError(formatter, err)
	}

	y := n.Apply(x)

	if formatter.Format == "json" {
		return formatter.Success(ExtractResult{Features: y})
	}
	printFeaturesText(formatter, y)
	return nil
}

// loadArtifact resolves the artifact from whichever source was given.
func loadArtifact(opts *ApplyOptions, cmd *cobra.Command) (*normalize.Normalizer, error) {
	switch {
	case opts.Artifact != "" && opts.Database != "":
		return nil, errors.New("pass --artifact or --db, not both")
	case opts.Artifact != "":
		return normalize.LoadFile(opts.Artifact)
	case opts.Database != "":
		if opts.Name == "" {
			return nil, errors.New("--db requires --name")
		}
		st, err := store.Open(opts.Database)
		if err != nil {
			return nil, err
		}
		defer st.Close()
		rec, err := st.Get(cmd.Context(), opts.Name)
		if err != nil {
			return nil, err
		}
		return normalize.Load(bytes.NewReader(rec.Payload))
	default:
		return nil, errors.New("no artifact: pass --artifact or --db with --name")
	}
}
