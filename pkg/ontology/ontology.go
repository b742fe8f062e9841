package ontology

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/ontoflow/pkg/errors"
	"github.com/matzehuels/ontoflow/pkg/graph"
)

// Ontology is the type registry for a flow graph.
type Ontology struct {
	NodeTypes []NodeType `yaml:"nodeTypes" json:"nodeTypes"`
	EdgeTypes []EdgeType `yaml:"edgeTypes" json:"edgeTypes"`
}

// NodeType declares a node type and its property schema.
type NodeType struct {
	ID         string            `yaml:"id" json:"id"`
	Name       string            `yaml:"name" json:"name"`
	Properties []Property        `yaml:"properties,omitempty" json:"properties,omitempty"`
	Layout     *graph.NodeLayout `yaml:"layout,omitempty" json:"layout,omitempty"`
}

// Property declares one node property. Type is informational.
type Property struct {
	Name     string `yaml:"name" json:"name"`
	Type     string `yaml:"type" json:"type"`
	Required bool   `yaml:"required" json:"required"`
}

// EdgeType declares a relationship type. An empty SourceTypes or
// TargetTypes set leaves that endpoint unconstrained.
type EdgeType struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	SourceTypes []string `yaml:"sourceTypes" json:"sourceTypes"`
	TargetTypes []string `yaml:"targetTypes" json:"targetTypes"`
	Style       Style    `yaml:"style,omitempty" json:"style,omitempty"`
}

// Style is the visual style of an edge type.
type Style struct {
	Stroke      string  `yaml:"stroke,omitempty" json:"stroke,omitempty"`
	StrokeWidth float64 `yaml:"strokeWidth,omitempty" json:"strokeWidth,omitempty"`
	Dash        string  `yaml:"dash,omitempty" json:"dash,omitempty"`
	Flow        bool    `yaml:"flow,omitempty" json:"flow,omitempty"`
}

// IsZero reports whether no style field is set.
func (s Style) IsZero() bool { return s == Style{} }

// NodeType returns the declared node type with the given id.
func (o *Ontology) NodeType(id string) (NodeType, bool) {
	for _, nt := range o.NodeTypes {
		if nt.ID == id {
			return nt, true
		}
	}
	return NodeType{}, false
}

// EdgeType returns the declared edge type with the given id.
func (o *Ontology) EdgeType(id string) (EdgeType, bool) {
	for _, et := range o.EdgeTypes {
		if et.ID == id {
			return et, true
		}
	}
	return EdgeType{}, false
}

// NodeTypeIDs returns declared node type ids in declaration order.
func (o *Ontology) NodeTypeIDs() []string {
	ids := make([]string, len(o.NodeTypes))
	for i, nt := range o.NodeTypes {
		ids[i] = nt.ID
	}
	return ids
}

// EdgeStyles maps each edge type with a declared style to that style.
func (o *Ontology) EdgeStyles() map[string]Style {
	m := make(map[string]Style, len(o.EdgeTypes))
	for _, et := range o.EdgeTypes {
		if !et.Style.IsZero() {
			m[et.ID] = et.Style
		}
	}
	return m
}

// EdgeLabels maps each edge type with a name to that name.
func (o *Ontology) EdgeLabels() map[string]string {
	m := make(map[string]string, len(o.EdgeTypes))
	for _, et := range o.EdgeTypes {
		if et.Name != "" {
			m[et.ID] = et.Name
		}
	}
	return m
}

// Parse decodes and checks an ontology document.
//
// Type ids must be present and unique, and edge types may only reference
// declared node types. All problems are reported together as a single
// INVALID_ONTOLOGY error; use [errors.Violations] to list them.
func Parse(data []byte) (*Ontology, error) {
	var o Ontology
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidOntology, err, "decode ontology")
	}
	if err := o.check(); err != nil {
		return nil, err
	}
	return &o, nil
}

// LoadFile reads and parses an ontology from path.
func LoadFile(path string) (*Ontology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	o, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return o, nil
}

func (o *Ontology) check() error {
	var problems []string

	nodeIDs := make(map[string]bool, len(o.NodeTypes))
	for i, nt := range o.NodeTypes {
		if err := errors.ValidateTypeName("node", nt.ID); err != nil {
			problems = append(problems, fmt.Sprintf("nodeTypes[%d]: %s", i, errors.UserMessage(err)))
			continue
		}
		if nodeIDs[nt.ID] {
			problems = append(problems, fmt.Sprintf("nodeTypes[%d]: duplicate node type %q", i, nt.ID))
		}
		nodeIDs[nt.ID] = true
		if msg := checkLayout(nt.Layout); msg != "" {
			problems = append(problems, fmt.Sprintf("node type %q: %s", nt.ID, msg))
		}
		seen := make(map[string]bool, len(nt.Properties))
		for _, p := range nt.Properties {
			if p.Name == "" {
				problems = append(problems, fmt.Sprintf("node type %q: property with empty name", nt.ID))
			} else if seen[p.Name] {
				problems = append(problems, fmt.Sprintf("node type %q: duplicate property %q", nt.ID, p.Name))
			}
			seen[p.Name] = true
		}
	}

	edgeIDs := make(map[string]bool, len(o.EdgeTypes))
	for i, et := range o.EdgeTypes {
		if err := errors.ValidateTypeName("edge", et.ID); err != nil {
			problems = append(problems, fmt.Sprintf("edgeTypes[%d]: %s", i, errors.UserMessage(err)))
			continue
		}
		if edgeIDs[et.ID] {
			problems = append(problems, fmt.Sprintf("edgeTypes[%d]: duplicate edge type %q", i, et.ID))
		}
		edgeIDs[et.ID] = true
		for _, st := range et.SourceTypes {
			if !nodeIDs[st] {
				problems = append(problems, fmt.Sprintf("edge type %q: undeclared source type %q", et.ID, st))
			}
		}
		for _, tt := range et.TargetTypes {
			if !nodeIDs[tt] {
				problems = append(problems, fmt.Sprintf("edge type %q: undeclared target type %q", et.ID, tt))
			}
		}
	}

	return errors.NewList(errors.ErrCodeInvalidOntology, problems)
}

func allows(set []string, typ string) bool {
	return len(set) == 0 || slices.Contains(set, typ)
}
