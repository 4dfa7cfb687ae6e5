// Package manifest declares a registry's initial contents in YAML, so game
// modules can ship their named states as data:
//
//	states:
//	  - name: Score
//	    value: 0
//	  - name: MaxHealth
//	    value: 100
//	    locked: true
//
// Apply feeds the declarations through the public registry API, so the
// usual guards hold: a name that already exists fails the whole apply.
package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/quembly/statekit/state"
)

// State is one declared named state.
type State struct {
	Name   string `yaml:"name"`
	Value  any    `yaml:"value"`
	Locked bool   `yaml:"locked"`
}

// Manifest is a set of state declarations applied in order.
type Manifest struct {
	States []State `yaml:"states"`
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes and validates manifest bytes.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks that every declaration carries a unique, non-empty name.
func (m *Manifest) Validate() error {
	seen := make(map[string]bool, len(m.States))
	for i, s := range m.States {
		if s.Name == "" {
			return fmt.Errorf("state %d has no name", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate state %q", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

// Apply creates every declared state and locks the ones marked locked.
// The first failing declaration aborts the apply; earlier ones stay.
func (m *Manifest) Apply(reg *state.Registry) error {
	for _, s := range m.States {
		if err := reg.Create(s.Name, s.Value); err != nil {
			return fmt.Errorf("create %q: %w", s.Name, err)
		}
		if s.Locked {
			if err := reg.Lock(s.Name); err != nil {
				return fmt.Errorf("lock %q: %w", s.Name, err)
			}
		}
	}
	return nil
}
