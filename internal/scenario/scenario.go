// Package scenario loads YAML call scripts and drives them through a
// monitored object.
//
// A scenario file looks like:
//
//	name: last writer wins
//	target: kv
//	calls:
//	  - method: set
//	    args: [foo, bar]
//	  - method: set
//	    args: [foo, 5]
//	  - method: get
//	    args: [foo]
//	    expect: 5
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Scenario is a named sequence of calls against one target.
type Scenario struct {
	Name   string `yaml:"name" validate:"required"`
	Target string `yaml:"target" validate:"required"`
	Policy string `yaml:"policy,omitempty" validate:"omitempty,oneof=halt continue"`
	Calls  []Step `yaml:"calls" validate:"required,min=1,dive"`

	// Path is the file the scenario was loaded from.
	Path string `yaml:"-"`
}

// Step is one call of a scenario. When Expect is present in the file the
// real result must equal it.
type Step struct {
	Method string `yaml:"method" validate:"required"`
	Args   []any  `yaml:"args,omitempty"`
	Expect any    `yaml:"expect,omitempty"`

	hasExpect bool
}

// HasExpect reports whether the step states an expected result.
func (s Step) HasExpect() bool { return s.hasExpect }

// UnmarshalYAML tells an explicit "expect: null" apart from no expectation.
func (s *Step) UnmarshalYAML(value *yaml.Node) error {
	type plain Step
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*s = Step(p)
	if value.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(value.Content); i += 2 {
			if value.Content[i].Value == "expect" {
				s.hasExpect = true
			}
		}
	}
	return nil
}

var validate = validator.New()

// Parse decodes a single scenario document.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty scenario")
		}
		return nil, err
	}
	if err := validate.Struct(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

// Load reads and parses the scenario at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Path = path
	return s, nil
}
