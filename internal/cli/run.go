package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veldt/gridfeat/internal/backend"
	"github.com/veldt/gridfeat/internal/grid"
)

// RunCmdOptions holds flags for the run command.
type RunCmdOptions struct {
	*RootOptions
	Backend       string
	MaxIterations int
	EnforceQLims  bool
	Output        string
}

// RunResult is the success payload of the run command.
type RunResult struct {
	Converged bool   `json:"converged"`
	Output    string `json:"output,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunCmdOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <network-file>",
		Short: "Run a power flow on a network file",
		Long: `Load a network file, run a power-flow computation, and report whether
it converged. Non-convergence is reported in the result, not as a crash.

With --out the solved network is written back to a file, result tables
included.

Example:
  gridfeat run net.json
  gridfeat run net.json --max-iterations 50 --out solved.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPowerFlow(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Backend, "backend", "pandapower", "backend engine name")
	cmd.Flags().IntVar(&opts.MaxIterations, "max-iterations", 0, "solver iteration cap (0 = engine default)")
	cmd.Flags().BoolVar(&opts.EnforceQLims, "enforce-q-lims", false, "respect generator reactive limits")
	cmd.Flags().StringVarP(&opts.Output, "out", "o", "", "path to write the solved network")

	return cmd
}

func runPowerFlow(opts *RunCmdOptions, path string, cmd *cobra.Command) error {
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

	net, err := b.LoadNetwork(path)
	if err != nil {
		return commandErrorWrap(formatter, ErrCodeLoadFailed, "loading network", err)
	}

	b.RunNetwork(net, &backend.RunOptions{
		MaxIterations: opts.MaxIterations,
		EnforceQLims:  opts.EnforceQLims,
	})

	converged, err := convergedFlag(b, net)
	if err != nil {
		return commandErrorWrap(formatter, ErrCodeGeneric, "reading convergence flag", err)
	}

	result := RunResult{Converged: converged}
	if opts.Output != "" {
		if err := b.SaveNetwork(net, opts.Output); err != nil {
			return commandErrorWrap(formatter, ErrCodeWriteFailed, "writing network", err)
		}
		result.Output = opts.Output
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		if converged {
			fmt.Fprintln(formatter.Writer, "Power flow converged")
		} else {
			fmt.Fprintln(formatter.Writer, "Power flow did not converge")
		}
		if result.Output != "" {
			fmt.Fprintf(formatter.Writer, "Solved network written to %s\n", result.Output)
		}
	}

	if !converged {
		return NewExitError(ExitFailure, "power flow did not converge")
	}
	return nil
}

// convergedFlag reads the "converged" global feature after a run.
func convergedFlag(b backend.Backend, net backend.Network) (bool, error) {
	x, err := b.GetFeatures(net, grid.Selection{"global": {"converged"}})
	if err != nil {
		return false, err
	}
	vals := x["global"]["converged"]
	if len(vals) == 0 {
		return false, fmt.Errorf("backend %s reports no convergence flag", b.Name())
	}
	return vals[0] != 0, nil
}
