// Package dataset lists grid instance files for corpus collection.
//
// The scan is deterministic by construction: entries are sorted before any
// optional shuffle, so an unshuffled scan is byte-stable across runs and a
// shuffled scan is reproducible under a fixed seed.
package dataset

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoValidFiles reports a directory with zero valid-extension entries.
// This is fatal at corpus-collection time: an empty corpus would make the
// downstream quantile computation ill-defined.
var ErrNoValidFiles = errors.New("no valid files")

// Options control scanning behavior.
type Options struct {
	// Shuffle randomly permutes the sorted listing before truncation.
	Shuffle bool

	// Seed drives the shuffle permutation. Ignored when Shuffle is false.
	Seed int64

	// NSamples truncates the listing to at most this many entries.
	// Zero or negative means no truncation.
	NSamples int
}

// Scan returns the paths under dir whose name ends with one of exts, in
// sorted order, optionally shuffled, truncated to the sample budget.
func Scan(dir string, exts []string, opts Options) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if hasValidExtension(e.Name(), exts) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoValidFiles, dir)
	}

	if opts.Shuffle {
		rng := rand.New(rand.NewSource(opts.Seed))
		rng.Shuffle(len(files), func(i, j int) {
			files[i], files[j] = files[j], files[i]
		})
	}

	if opts.NSamples > 0 && len(files) > opts.NSamples {
		files = files[:opts.NSamples]
	}
	return files, nil
}

func hasValidExtension(name string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
