package cbcr

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is the optional converter configuration loaded by the CLI.
// Everything has a sensible default; a missing profile file is not an
// error for callers that pass an empty path.
type Profile struct {
	// EntityScheme is the identifier scheme stamped on every context.
	// Default: DefaultEntityScheme.
	EntityScheme string `yaml:"entity_scheme"`

	// OutputDir is where batch conversion writes .xhtml documents.
	// Default: ".".
	OutputDir string `yaml:"output_dir"`

	// ContinueOnError keeps batch conversion going past failed files.
	// Default: true.
	ContinueOnError *bool `yaml:"continue_on_error"`
}

// LoadProfile reads a yaml profile from disk and applies defaults
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	p.applyDefaults()
	return &p, nil
}

// DefaultProfile returns a profile with every default applied
func DefaultProfile() *Profile {
	p := &Profile{}
	p.applyDefaults()
	return p
}

func (p *Profile) applyDefaults() {
	if p.EntityScheme == "" {
		p.EntityScheme = DefaultEntityScheme
	}
	if p.OutputDir == "" {
		p.OutputDir = "."
	}
	if p.ContinueOnError == nil {
		t := true
		p.ContinueOnError = &t
	}
}

// Options converts the profile into per-conversion options
func (p *Profile) Options() Options {
	return Options{EntityScheme: p.EntityScheme}
}
