package normalize

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/veldt/gridfeat/internal/backend"
	"github.com/veldt/gridfeat/internal/dataset"
	"github.com/veldt/gridfeat/internal/grid"
)

// Defaults for the fit configuration.
const (
	DefaultBackendName     = "pandapower"
	DefaultAmountOfSamples = 100
	DefaultBreakPoints     = 200
)

// TrainSubdir is the dataset subdirectory holding the fitting corpus.
const TrainSubdir = "train"

// Config is the recognized configuration surface for fitting.
type Config struct {
	// BackendName selects the engine used to read the corpus.
	BackendName string

	// DataDir is the dataset root; fitting reads <DataDir>/train.
	DataDir string

	// AmountOfSamples bounds how many corpus files the fit reads.
	AmountOfSamples int

	// Shuffle draws the sample randomly instead of taking the first
	// files in sorted order.
	Shuffle bool

	// Seed drives the shuffle, making shuffled fits reproducible.
	Seed int64

	// BreakPoints is the quantile resolution of the fitted transforms.
	BreakPoints int

	// Features selects the (object type, feature) pairs to fit. Nil means
	// the backend's full feature registry.
	Features grid.Selection
}

func (c Config) withDefaults() Config {
	if c.BackendName == "" {
		c.BackendName = DefaultBackendName
	}
	if c.AmountOfSamples == 0 {
		c.AmountOfSamples = DefaultAmountOfSamples
	}
	if c.BreakPoints == 0 {
		c.BreakPoints = DefaultBreakPoints
	}
	return c
}

// Fit builds a normalizer from a sampled corpus, resolving the engine
// through the backend registry.
func Fit(cfg Config) (*Normalizer, error) {
	cfg = cfg.withDefaults()
	b, err := backend.Get(cfg.BackendName)
	if err != nil {
		return nil, err
	}
	return FitWith(cfg, b)
}

// FitWith is Fit with an explicit engine, for callers that already hold
// one (and for tests that inject a configured engine).
func FitWith(cfg Config, b backend.Backend) (*Normalizer, error) {
	cfg = cfg.withDefaults()
	if cfg.BreakPoints < 1 {
		return nil, fmt.Errorf("break points must be positive, got %d", cfg.BreakPoints)
	}

	sel := cfg.Features
	if sel == nil {
		sel = b.ValidFeatureNames()
	}
	if err := backend.CheckFeatureNames(b, sel); err != nil {
		return nil, err
	}

	values, err := collectValues(cfg, b, sel)
	if err != nil {
		return nil, err
	}

	functions := make(map[string]map[string]Function, len(sel))
	for _, k := range grid.SortedKeys(sel) {
		functions[k] = make(map[string]Function, len(sel[k]))
		for _, f := range sel[k] {
			functions[k][f] = buildFunction(values[k][f], cfg.BreakPoints)
		}
	}

	return &Normalizer{
		ID:          uuid.NewString(),
		BackendName: b.Name(),
		BreakPoints: cfg.BreakPoints,
		functions:   functions,
	}, nil
}

// collectValues accumulates the flattened observed values per requested
// pair over the sampled corpus. Pairs a given instance does not carry
// contribute nothing for that instance.
func collectValues(cfg Config, b backend.Backend, sel grid.Selection) (map[string]map[string][]float64, error) {
	trainDir := filepath.Join(cfg.DataDir, TrainSubdir)
	files, err := dataset.Scan(trainDir, b.ValidExtensions(), dataset.Options{
		Shuffle:  cfg.Shuffle,
		Seed:     cfg.Seed,
		NSamples: cfg.AmountOfSamples,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("collecting fit corpus", "dir", trainDir, "files", len(files))

	values := map[string]map[string][]float64{}
	for _, k := range grid.SortedKeys(sel) {
		values[k] = map[string][]float64{}
	}

	for _, file := range files {
		net, err := b.LoadNetwork(file)
		if err != nil {
			return nil, fmt.Errorf("fit corpus: %w", err)
		}
		x, err := b.GetFeatures(net, sel)
		if err != nil {
			return nil, fmt.Errorf("fit corpus at %s: %w", file, err)
		}
		for _, k := range grid.SortedKeys(x) {
			for _, f := range grid.SortedKeys(x[k]) {
				for _, v := range x[k][f] {
					values[k][f] = append(values[k][f], float64(v))
				}
			}
		}
		slog.Debug("sample collected", "file", file)
	}
	return values, nil
}
