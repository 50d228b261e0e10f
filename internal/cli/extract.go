package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veldt/gridfeat/internal/backend"
	"github.com/veldt/gridfeat/internal/grid"
)

// ExtractOptions holds flags for the extract command.
type ExtractOptions struct {
	*RootOptions
	Backend   string
	Features  []string
	Addresses []string
}

// ExtractResult is the success payload of the extract command.
type ExtractResult struct {
	Features  grid.Features  `json:"features,omitempty"`
	Addresses grid.Addresses `json:"addresses,omitempty"`
}

// NewExtractCommand creates the extract command.
func NewExtractCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExtractOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "extract <network-file>",
		Short: "Extract features and addresses from a network file",
		Long: `Extract a nested feature dictionary from a single network file.

Selections use "object:name,name" syntax and may repeat. Without any
selection flag the full feature registry of the backend is extracted.

Example:
  gridfeat extract net.json --feature load:p_mw,q_mvar --feature gen:vm_pu
  gridfeat extract net.json --address line:from_bus,to_bus --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Backend, "backend", "pandapower", "backend engine name")
	cmd.Flags().StringArrayVar(&opts.Features, "feature", nil, "feature selection as object:name,name (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Addresses, "address", nil, "address selection as object:role,role (repeatable)")

	return cmd
}

func runExtract(opts *ExtractOptions, path string, cmd *cobra.Command) error {
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

	featSel, err := ParseSelection(opts.Features)
	if err != nil {
		return commandError(formatter, ErrCodeBadSelection, err.Error(), nil)
	}
	addrSel, err := ParseSelection(opts.Addresses)
	if err != nil {
		return commandError(formatter, ErrCodeBadSelection, err.Error(), nil)
	}

	// No explicit selection means the full feature registry.
	if featSel == nil && addrSel == nil {
		featSel = grid.Selection(b.ValidFeatureNames())
	}

	net, err := b.LoadNetwork(path)
	if err != nil {
		return commandErrorWrap(formatter, ErrCodeLoadFailed, "loading network", err)
	}

	result := ExtractResult{}
	if featSel != nil {
		result.Features, err = b.GetFeatures(net, featSel)
		if err != nil {
			return nameOrGenericError(formatter, err)
		}
	}
	if addrSel != nil {
		result.Addresses, err = b.GetAddresses(net, addrSel)
		if err != nil {
			return nameOrGenericError(formatter, err)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	printFeaturesText(formatter, result.Features)
	printAddressesText(formatter, result.Addresses)
	return nil
}

func nameOrGenericError(formatter *OutputFormatter, err error) error {
	var nameErr *backend.NameError
	if errors.As(err, &nameErr) {
		return commandError(formatter, ErrCodeBadName, err.Error(), nameErr.Valid)
	}
	return commandError(formatter, ErrCodeGeneric, err.Error(), nil)
}

func printFeaturesText(formatter *OutputFormatter, x grid.Features) {
	for _, object := range grid.SortedKeys(x) {
		for _, feature := range grid.SortedKeys(x[object]) {
			fmt.Fprintf(formatter.Writer, "%s/%s: %v\n", object, feature, x[object][feature])
		}
	}
}

func printAddressesText(formatter *OutputFormatter, a grid.Addresses) {
	for _, object := range grid.SortedKeys(a) {
		for _, role := range grid.SortedKeys(a[object]) {
			fmt.Fprintf(formatter.Writer, "%s/%s: %v\n", object, role, a[object][role])
		}
	}
}
