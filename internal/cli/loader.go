package cli

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"

	"github.com/veldt/gridfeat/internal/grid"
	"github.com/veldt/gridfeat/internal/normalize"
)

//go:embed profile.cue
var profileSchema string

// Profile is a declarative description of one normalizer fit, loaded from
// a YAML file and validated against the embedded CUE schema.
type Profile struct {
	Backend         string              `yaml:"backend"`
	DataDir         string              `yaml:"data_dir"`
	AmountOfSamples int                 `yaml:"amount_of_samples"`
	Shuffle         bool                `yaml:"shuffle"`
	Seed            int64               `yaml:"seed"`
	BreakPoints     int                 `yaml:"break_points"`
	Features        map[string][]string `yaml:"features"`
}

// ProfileError reports why a profile failed to load or validate.
type ProfileError struct {
	Path    string
	Message string
}

func (e *ProfileError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// LoadProfile reads a YAML fit profile and validates it against the
// profile schema before decoding. Schema violations (unknown fields,
// missing data_dir, wrong types) are reported with CUE's error detail.
func LoadProfile(path string) (*Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ProfileError{Path: path, Message: fmt.Sprintf("reading profile: %v", err)}
	}

	if err := validateProfile(path, raw); err != nil {
		return nil, err
	}

	var p Profile
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, &ProfileError{Path: path, Message: fmt.Sprintf("decoding profile: %v", err)}
	}
	return &p, nil
}

// validateProfile unifies the YAML document with the #Profile schema.
func validateProfile(path string, raw []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(profileSchema).LookupPath(cue.ParsePath("#Profile"))
	if err := schema.Err(); err != nil {
		return &ProfileError{Path: path, Message: fmt.Sprintf("compiling schema: %v", err)}
	}

	file, err := cueyaml.Extract(path, raw)
	if err != nil {
		return &ProfileError{Path: path, Message: fmt.Sprintf("parsing YAML: %v", err)}
	}
	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return &ProfileError{Path: path, Message: fmt.Sprintf("building document: %v", err)}
	}

	unified := schema.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return &ProfileError{Path: path, Message: err.Error()}
	}
	return nil
}

// Config converts the profile into a fit configuration. Zero-valued
// fields fall through to the fit defaults.
func (p *Profile) Config() normalize.Config {
	cfg := normalize.Config{
		BackendName:     p.Backend,
		DataDir:         p.DataDir,
		AmountOfSamples: p.AmountOfSamples,
		Shuffle:         p.Shuffle,
		Seed:            p.Seed,
		BreakPoints:     p.BreakPoints,
	}
	if len(p.Features) > 0 {
		cfg.Features = grid.Selection(p.Features)
	}
	return cfg
}
