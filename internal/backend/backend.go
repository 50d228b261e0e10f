package backend

import (
	"github.com/veldt/gridfeat/internal/dataset"
	"github.com/veldt/gridfeat/internal/grid"
)

// Network is an opaque handle to an engine-specific grid model. The core
// never interprets its contents; every access goes through the owning
// Backend.
type Network interface {
	// Engine names the backend that produced this network.
	Engine() string
}

// RunOptions tune a power-flow run. Engines interpret what they support
// and ignore the rest.
type RunOptions struct {
	// MaxIterations bounds the solver's iteration count. Zero means the
	// engine default.
	MaxIterations int

	// EnforceQLims asks the solver to respect generator reactive limits.
	EnforceQLims bool
}

// Backend is the uniform contract over one simulation engine.
//
// Implementations register themselves by name (see Register) and carry
// immutable registries of valid object types and feature/address names,
// loaded once at construction and never mutated.
type Backend interface {
	// Name returns the registry name of this engine.
	Name() string

	// ValidExtensions lists file suffixes the engine can load.
	ValidExtensions() []string

	// ValidFeatureNames maps each valid object type to its valid feature
	// names. Callers must not mutate the returned registry.
	ValidFeatureNames() map[string][]string

	// ValidAddressNames maps each valid object type to its valid address
	// roles. Callers must not mutate the returned registry.
	ValidAddressNames() map[string][]string

	// LoadNetwork parses a single grid instance file. Files whose
	// extension is outside ValidExtensions fail with ErrUnsupportedFormat.
	LoadNetwork(path string) (Network, error)

	// SaveNetwork writes a single grid instance to path.
	SaveNetwork(net Network, path string) error

	// GetFeatures extracts a nested feature dictionary for the requested
	// selection, casting to float32. Requested names outside the registry
	// fail with a NameError; individually unavailable (type, feature)
	// pairs (absent table, missing column) are omitted, not errors.
	GetFeatures(net Network, sel grid.Selection) (grid.Features, error)

	// GetAddresses extracts a nested address dictionary for the requested
	// selection, with identifiers encoded as dense per-instance integer
	// codes.
	GetAddresses(net Network, sel grid.Selection) (grid.Addresses, error)

	// SetFeatures writes feature columns back into the engine's tables by
	// key. Unsupported (type, feature) pairs are skipped and reported in
	// the returned SetReport; the write never aborts on them.
	SetFeatures(net Network, y grid.Features) *SetReport

	// RunNetwork triggers a power-flow computation, mutating net in
	// place. Non-convergence is not an error: it is reflected only in the
	// "converged" global feature afterwards.
	RunNetwork(net Network, opts *RunOptions)
}

// ScanOptions control GetValidFiles.
type ScanOptions = dataset.Options

// GetValidFiles lists grid files under path that the backend can load, in
// sorted order, optionally shuffled and truncated. An empty result is the
// fatal dataset.ErrNoValidFiles.
func GetValidFiles(b Backend, path string, opts ScanOptions) ([]string, error) {
	return dataset.Scan(path, b.ValidExtensions(), opts)
}
