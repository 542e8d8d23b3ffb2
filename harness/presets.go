package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PresetFile is the experiments.yaml structure. All top-level sections must
// be listed so that KnownFields(true) strict parsing flags typos as errors.
type PresetFile struct {
	Version     string                `yaml:"version"`
	Experiments map[string]Experiment `yaml:"experiments"`
}

// LoadPresets parses an experiments.yaml into a PresetFile.
// Unknown keys are errors.
func LoadPresets(path string) (*PresetFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets file: %w", err)
	}
	return ParsePresets(data)
}

// ParsePresets decodes preset YAML with strict field checking.
func ParsePresets(data []byte) (*PresetFile, error) {
	var pf PresetFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&pf); err != nil {
		return nil, fmt.Errorf("parse presets YAML: %w", err)
	}
	for name, exp := range pf.Experiments {
		if exp.Name == "" {
			exp.Name = name
			pf.Experiments[name] = exp
		}
		if err := exp.Validate(); err != nil {
			return nil, err
		}
	}
	return &pf, nil
}

// Experiment returns the named preset, or an error listing what exists.
func (p *PresetFile) Experiment(name string) (*Experiment, error) {
	exp, ok := p.Experiments[name]
	if !ok {
		names := make([]string, 0, len(p.Experiments))
		for n := range p.Experiments {
			names = append(names, n)
		}
		return nil, fmt.Errorf("no experiment %q in presets (have %v)", name, names)
	}
	return &exp, nil
}

// DefaultPresets returns the two built-in experiments the walkthrough
// compares: a bare memory bus and a two-level hierarchy, both running the
// same workload binary.
func DefaultPresets(workload string) *PresetFile {
	noCache, _ := NewExperiment("no-cache", HierarchyNone, workload)
	twoLevel, _ := NewExperiment("two-level", HierarchyTwoLevel, workload)
	return &PresetFile{
		Version: "1",
		Experiments: map[string]Experiment{
			"no-cache":  *noCache,
			"two-level": *twoLevel,
		},
	}
}
