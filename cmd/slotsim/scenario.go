package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Reserved node labels.
const (
	labelHost = "host"
	labelRoot = "root"
)

// Step operations.
const (
	opAppend       = "append"
	opInsertBefore = "insertBefore"
	opRemove       = "remove"
	opRemoveAll    = "removeAll"
	opSetAttr      = "setAttr"
	opRemoveAttr   = "removeAttr"
	opFlush        = "flush"
)

// Scenario is a scripted sequence of tree mutations.
type Scenario struct {
	// Name labels the run in the output.
	Name string `yaml:"name"`

	// Host is the tag of the shadow host (default "div").
	Host string `yaml:"host"`

	// Shadow is the initial content of the shadow root.
	Shadow []NodeSpec `yaml:"shadow"`

	// Children is the initial content of the host.
	Children []NodeSpec `yaml:"children"`

	// Steps run in order after the initial trees are built.
	Steps []Step `yaml:"steps"`
}

// NodeSpec describes a node to create.
//
// A spec with only Text is a text node; Tag "slot" creates a slot element
// named Name (no name attribute when Name is empty).
type NodeSpec struct {
	ID       string            `yaml:"id"`
	Tag      string            `yaml:"tag"`
	Text     string            `yaml:"text"`
	Name     string            `yaml:"name"`
	Slot     string            `yaml:"slot"`
	Attrs    map[string]string `yaml:"attrs"`
	Children []NodeSpec        `yaml:"children"`
}

// Step is one mutation of the scenario.
type Step struct {
	Op     string    `yaml:"op"`
	Parent string    `yaml:"parent"`
	Before string    `yaml:"before"`
	Target string    `yaml:"target"`
	Node   *NodeSpec `yaml:"node"`
	Attr   string    `yaml:"attr"`
	Value  string    `yaml:"value"`
}

// LoadScenario reads and validates a YAML scenario.
func LoadScenario(r io.Reader) (*Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if sc.Host == "" {
		sc.Host = "div"
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	return &sc, nil
}

// LoadScenarioFile reads a scenario from path.
func LoadScenarioFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()

	return LoadScenario(f)
}

// Validate checks that labels are unique and every step is well formed.
// Labels referenced by steps must be declared by a node created earlier.
func (sc *Scenario) Validate() error {
	declared := map[string]bool{labelHost: true, labelRoot: true}
	var errs []error

	var declare func(where string, specs []NodeSpec)
	declare = func(where string, specs []NodeSpec) {
		for i := range specs {
			s := &specs[i]
			if err := s.validate(); err != nil {
				errs = append(errs, fmt.Errorf("%s[%d]: %w", where, i, err))
			}
			if s.ID != "" {
				if declared[s.ID] {
					errs = append(errs, fmt.Errorf("%s[%d]: duplicate id %q", where, i, s.ID))
				}
				declared[s.ID] = true
			}
			declare(fmt.Sprintf("%s[%d].children", where, i), s.Children)
		}
	}
	declare("shadow", sc.Shadow)
	declare("children", sc.Children)

	known := func(label string) bool { return label == "" || declared[label] }
	for i, st := range sc.Steps {
		where := fmt.Sprintf("steps[%d] (%s)", i, st.Op)
		switch st.Op {
		case opAppend, opInsertBefore:
			if st.Node == nil {
				errs = append(errs, fmt.Errorf("%s: node is required", where))
				continue
			}
			if st.Op == opInsertBefore && st.Before == "" {
				errs = append(errs, fmt.Errorf("%s: before is required", where))
			}
			if !known(st.Parent) || !known(st.Before) {
				errs = append(errs, fmt.Errorf("%s: unknown parent or before label", where))
			}
			declare(where+".node", []NodeSpec{*st.Node})
		case opRemove:
			if st.Target == "" || !declared[st.Target] || st.Target == labelHost || st.Target == labelRoot {
				errs = append(errs, fmt.Errorf("%s: target %q is not a removable node", where, st.Target))
			}
		case opRemoveAll:
			if !known(st.Parent) {
				errs = append(errs, fmt.Errorf("%s: unknown parent %q", where, st.Parent))
			}
		case opSetAttr, opRemoveAttr:
			if !declared[st.Target] || st.Attr == "" {
				errs = append(errs, fmt.Errorf("%s: target and attr are required", where))
			}
		case opFlush:
		default:
			errs = append(errs, fmt.Errorf("%s: unknown op", where))
		}
	}

	return errors.Join(errs...)
}

func (s *NodeSpec) validate() error {
	switch {
	case s.Tag == "" && s.Text == "":
		return errors.New("node needs a tag or text")
	case s.Tag == "" && len(s.Children) > 0:
		return errors.New("text node cannot have children")
	case s.ID == labelHost || s.ID == labelRoot:
		return fmt.Errorf("id %q is reserved", s.ID)
	}

	return nil
}
