package backend

import (
	"fmt"

	"github.com/veldt/gridfeat/internal/grid"
)

// Batch helpers apply the single-instance operations independently over an
// ordered sequence of networks, preserving order. There is no rollback on
// partial failure: an error reports how far the batch got and aborts the
// remainder. Instances share no mutable state, so callers may parallelize
// around these helpers without changing observable results; the helpers
// themselves stay sequential.

// LoadBatch loads every path in order.
func LoadBatch(b Backend, paths []string) ([]Network, error) {
	nets := make([]Network, 0, len(paths))
	for _, path := range paths {
		net, err := b.LoadNetwork(path)
		if err != nil {
			return nets, fmt.Errorf("load batch at %s: %w", path, err)
		}
		nets = append(nets, net)
	}
	return nets, nil
}

// SaveBatch saves nets[i] to paths[i] in order.
func SaveBatch(b Backend, nets []Network, paths []string) error {
	if len(nets) != len(paths) {
		return fmt.Errorf("save batch: %d networks for %d paths", len(nets), len(paths))
	}
	for i, net := range nets {
		if err := b.SaveNetwork(net, paths[i]); err != nil {
			return fmt.Errorf("save batch at %s: %w", paths[i], err)
		}
	}
	return nil
}

// GetFeatureBatch extracts one feature dictionary per network, in order.
func GetFeatureBatch(b Backend, nets []Network, sel grid.Selection) ([]grid.Features, error) {
	batch := make([]grid.Features, 0, len(nets))
	for i, net := range nets {
		x, err := b.GetFeatures(net, sel)
		if err != nil {
			return batch, fmt.Errorf("get feature batch [%d]: %w", i, err)
		}
		batch = append(batch, x)
	}
	return batch, nil
}

// GetAddressBatch extracts one address dictionary per network, in order.
func GetAddressBatch(b Backend, nets []Network, sel grid.Selection) ([]grid.Addresses, error) {
	batch := make([]grid.Addresses, 0, len(nets))
	for i, net := range nets {
		a, err := b.GetAddresses(net, sel)
		if err != nil {
			return batch, fmt.Errorf("get address batch [%d]: %w", i, err)
		}
		batch = append(batch, a)
	}
	return batch, nil
}

// SetFeatureBatch writes ys[i] into nets[i] and aggregates the per-item
// outcomes into one report.
func SetFeatureBatch(b Backend, nets []Network, ys []grid.Features) (*SetReport, error) {
	if len(nets) != len(ys) {
		return nil, fmt.Errorf("set feature batch: %d networks for %d feature dicts", len(nets), len(ys))
	}
	report := &SetReport{}
	for i, net := range nets {
		report.Merge(b.SetFeatures(net, ys[i]))
	}
	return report, nil
}

// RunBatch triggers a power-flow run on every network in order.
// Non-convergence never aborts the batch.
func RunBatch(b Backend, nets []Network, opts *RunOptions) {
	for _, net := range nets {
		b.RunNetwork(net, opts)
	}
}
