package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veldt/gridfeat/internal/backend"
	"github.com/veldt/gridfeat/internal/dataset"
)

// ScanCmdOptions holds flags for the scan command.
type ScanCmdOptions struct {
	*RootOptions
	Backend  string
	Shuffle  bool
	Seed     int64
	NSamples int
}

// ScanResult is the success payload of the scan command.
type ScanResult struct {
	Count int      `json:"count"`
	Files []string `json:"files"`
}

// NewScanCommand creates the scan command.
func NewScanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScanCmdOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "scan <dir>",
		Short: "List network files a backend can load",
		Long: `List files under a directory whose extension the backend supports,
in sorted order. The same shuffling and truncation options the fitter
uses are available for previewing a training sample.

Example:
  gridfeat scan ./data/train
  gridfeat scan ./data/train --shuffle --seed 7 --n-samples 10`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Backend, "backend", "pandapower", "backend engine name")
	cmd.Flags().BoolVar(&opts.Shuffle, "shuffle", false, "shuffle the file list")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "shuffle seed")
	cmd.Flags().IntVar(&opts.NSamples, "n-samples", 0, "cap on the number of files (0 = all)")

	return cmd
}

func runScan(opts *ScanCmdOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	b, err := backend.Get(opts.Backend)
	if err != nil {
		return commandError(formatter, ErrCodeUnknownBackend, err.Error(), backend.Registered())
	}

	files, err := backend.GetValidFiles(b, dir, backend.ScanOptions{
		Shuffle:  opts.Shuffle,
		Seed:     opts.Seed,
		NSamples: opts.NSamples,
	})
	if err != nil {
		if errors.Is(err, dataset.ErrNoValidFiles) {
			_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
			return WrapExitError(ExitFailure, "scan", err)
		}
		return commandErrorWrap(formatter, ErrCodeNotFound, "scanning directory", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(ScanResult{Count: len(files), Files: files})
	}
	for _, f := range files {
		fmt.Fprintln(formatter.Writer, f)
	}
	formatter.VerboseLog("%d file(s)", len(files))
	return nil
}
