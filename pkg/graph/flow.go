package graph

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/ontoflow/pkg/errors"
)

// ParseResult is the outcome of parsing a flow document: either a complete
// Graph or every violation found, never both.
type ParseResult struct {
	Graph  *Graph
	Errors []string
}

// OK reports whether parsing succeeded.
func (r ParseResult) OK() bool { return r.Graph != nil && len(r.Errors) == 0 }

// Err converts a failed result into a coded error listing every violation.
// It returns nil for a successful result.
func (r ParseResult) Err() error {
	if r.OK() {
		return nil
	}
	return errors.NewList(errors.ErrCodeSchemaViolation, r.Errors)
}

// ParseFlow decodes a YAML flow document.
//
// The document is checked for empty or duplicate ids, empty types, and
// edges missing an id, source or target. All violations are collected in
// document order. Dangling edge endpoints are left for the ontology
// validator to report.
func ParseFlow(data []byte) ParseResult {
	var g Graph
	if err := yaml.Unmarshal(data, &g); err != nil {
		return ParseResult{Errors: []string{fmt.Sprintf("yaml: %v", err)}}
	}

	var problems []string
	seen := make(map[string]bool, len(g.Nodes))
	for i, n := range g.Nodes {
		if err := errors.ValidateID("node", n.ID); err != nil {
			problems = append(problems, fmt.Sprintf("nodes[%d]: %s", i, errors.UserMessage(err)))
		} else if seen[n.ID] {
			problems = append(problems, fmt.Sprintf("nodes[%d]: duplicate node id %q", i, n.ID))
		}
		seen[n.ID] = true
		if n.Type == "" {
			problems = append(problems, fmt.Sprintf("nodes[%d]: node %q has no type", i, n.ID))
		}
		if n.Layout != nil && n.Layout.Algorithm == "" {
			problems = append(problems, fmt.Sprintf("nodes[%d]: layout override on %q has no algorithm", i, n.ID))
		}
	}

	seenEdges := make(map[string]bool, len(g.Edges))
	for i, e := range g.Edges {
		if err := errors.ValidateID("edge", e.ID); err != nil {
			problems = append(problems, fmt.Sprintf("edges[%d]: %s", i, errors.UserMessage(err)))
		} else if seenEdges[e.ID] {
			problems = append(problems, fmt.Sprintf("edges[%d]: duplicate edge id %q", i, e.ID))
		}
		seenEdges[e.ID] = true
		if e.Source == "" {
			problems = append(problems, fmt.Sprintf("edges[%d]: edge %q has no source", i, e.ID))
		}
		if e.Target == "" {
			problems = append(problems, fmt.Sprintf("edges[%d]: edge %q has no target", i, e.ID))
		}
		if e.Type == "" {
			problems = append(problems, fmt.Sprintf("edges[%d]: edge %q has no type", i, e.ID))
		}
	}

	if len(problems) > 0 {
		return ParseResult{Errors: problems}
	}
	return ParseResult{Graph: &g}
}

// LoadFlow reads and parses a flow document from path. Read failures are
// returned as errors; content violations are returned in the result.
func LoadFlow(path string) (ParseResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ParseResult{}, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseFlow(data), nil
}
