package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/veldt/gridfeat/internal/store"
)

// ArtifactsOptions holds flags for the artifacts command.
type ArtifactsOptions struct {
	*RootOptions
	Database string
}

// ArtifactInfo is one registry entry in command output. The payload is
// deliberately omitted; use "artifacts export" to get it.
type ArtifactInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Backend     string `json:"backend"`
	BreakPoints int    `json:"break_points"`
	CreatedAt   string `json:"created_at"`
	Bytes       int    `json:"bytes"`
}

// NewArtifactsCommand creates the artifacts command group.
func NewArtifactsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ArtifactsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "artifacts",
		Short: "Inspect the artifact registry",
	}
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite artifact registry (required)")
	_ = cmd.MarkPersistentFlagRequired("db")

	cmd.AddCommand(newArtifactsListCommand(opts))
	cmd.AddCommand(newArtifactsExportCommand(opts))

	return cmd
}

func newArtifactsListCommand(opts *ArtifactsOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List stored artifacts",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArtifactsList(opts, cmd)
		},
	}
}

func newArtifactsExportCommand(opts *ArtifactsOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "export <name>",
		Short:         "Print a stored artifact's payload",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArtifactsExport(opts, args[0], cmd)
		},
	}
}

func runArtifactsList(opts *ArtifactsOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return commandErrorWrap(formatter, ErrCodeNotFound, "opening registry", err)
	}
	defer st.Close()

	records, err := st.List(cmd.Context())
	if err != nil {
		return commandErrorWrap(formatter, ErrCodeGeneric, "listing artifacts", err)
	}

	infos := make([]ArtifactInfo, 0, len(records))
	for _, rec := range records {
		infos = append(infos, ArtifactInfo{
			ID:          rec.ID,
			Name:        rec.Name,
			Backend:     rec.Backend,
			BreakPoints: rec.BreakPoints,
			CreatedAt:   rec.CreatedAt.Format(time.RFC3339),
			Bytes:       len(rec.Payload),
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(infos)
	}
	if len(infos) == 0 {
		fmt.Fprintln(formatter.Writer, "No artifacts stored")
		return nil
	}
	for _, info := range infos {
		fmt.Fprintf(formatter.Writer, "%s\t%s\t%d break points\t%s\n", info.Name, info.Backend, info.BreakPoints, info.CreatedAt)
	}
	return nil
}

func runArtifactsExport(opts *ArtifactsOptions, name string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return commandErrorWrap(formatter, ErrCodeNotFound, "opening registry", err)
	}
	defer st.Close()

	rec, err := st.Get(cmd.Context(), name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return commandError(formatter, ErrCodeNotFound, err.Error(), nil)
		}
		return commandErrorWrap(formatter, ErrCodeGeneric, "reading artifact", err)
	}

	// The payload is already canonical JSON; write it through untouched
	// regardless of the format flag.
	_, err = formatter.Writer.Write(rec.Payload)
	return err
}
