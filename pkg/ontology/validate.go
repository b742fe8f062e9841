package ontology

import (
	"fmt"
	"strings"

	"github.com/matzehuels/ontoflow/pkg/graph"
	"github.com/matzehuels/ontoflow/pkg/layout"
)

// Result is the outcome of a validation: Valid is true exactly when Errors
// is empty.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

func result(errs []string) Result {
	return Result{Valid: len(errs) == 0, Errors: errs}
}

// Merge combines results, preserving error order.
func (r Result) Merge(other Result) Result {
	return result(append(append([]string(nil), r.Errors...), other.Errors...))
}

// ValidateNodeType checks that node's type is declared and that every
// required property of that type is present. Extra properties are accepted.
// A layout override must name a built-in algorithm.
func ValidateNodeType(node graph.Node, ont *Ontology) Result {
	var errs []string
	if msg := checkLayout(node.Layout); msg != "" {
		errs = append(errs, fmt.Sprintf("node %q: %s", node.ID, msg))
	}
	nt, ok := ont.NodeType(node.Type)
	if !ok {
		return result(append(errs, fmt.Sprintf("node %q: unknown node type %q", node.ID, node.Type)))
	}
	for _, p := range nt.Properties {
		if !p.Required {
			continue
		}
		if _, ok := node.Properties[p.Name]; !ok {
			errs = append(errs, fmt.Sprintf("node %q: missing required property %q for type %q", node.ID, p.Name, nt.ID))
		}
	}
	return result(errs)
}

func checkLayout(l *graph.NodeLayout) string {
	if l == nil || layout.IsBuiltin(l.Algorithm) {
		return ""
	}
	return fmt.Sprintf("unknown layout algorithm %q (expected one of [%s])",
		l.Algorithm, strings.Join(layout.AlgorithmNames(), ", "))
}

// ValidateEdgeType checks that edge's type is declared and that the source
// and target node types are allowed by it. Both endpoint checks run
// independently.
func ValidateEdgeType(edge graph.Edge, source, target graph.Node, ont *Ontology) Result {
	et, ok := ont.EdgeType(edge.Type)
	if !ok {
		return result([]string{fmt.Sprintf("edge %q: unknown edge type %q", edge.ID, edge.Type)})
	}
	var errs []string
	if !allows(et.SourceTypes, source.Type) {
		errs = append(errs, fmt.Sprintf("edge %q: source type %q not allowed for %q (expected one of [%s])",
			edge.ID, source.Type, et.ID, strings.Join(et.SourceTypes, ", ")))
	}
	if !allows(et.TargetTypes, target.Type) {
		errs = append(errs, fmt.Sprintf("edge %q: target type %q not allowed for %q (expected one of [%s])",
			edge.ID, target.Type, et.ID, strings.Join(et.TargetTypes, ", ")))
	}
	return result(errs)
}

// ValidateFlowNodes validates every node.
func ValidateFlowNodes(nodes []graph.Node, ont *Ontology) Result {
	var errs []string
	for _, n := range nodes {
		errs = append(errs, ValidateNodeType(n, ont).Errors...)
	}
	return result(errs)
}

// ValidateFlowEdges validates every edge against the nodes it connects.
// A missing endpoint is reported by id and the edge's type checks are
// skipped; validation continues with the next edge.
func ValidateFlowEdges(edges []graph.Edge, nodes []graph.Node, ont *Ontology) Result {
	byID := graph.NodeMap(nodes)
	var errs []string
	for _, e := range edges {
		src, okSrc := byID[e.Source]
		tgt, okTgt := byID[e.Target]
		if !okSrc {
			errs = append(errs, fmt.Sprintf("edge %q: source node %q not found", e.ID, e.Source))
		}
		if !okTgt {
			errs = append(errs, fmt.Sprintf("edge %q: target node %q not found", e.ID, e.Target))
		}
		if !okSrc || !okTgt {
			continue
		}
		errs = append(errs, ValidateEdgeType(e, src, tgt, ont).Errors...)
	}
	return result(errs)
}

// Validate checks all nodes, then all edges, of g.
func Validate(g graph.Graph, ont *Ontology) Result {
	return ValidateFlowNodes(g.Nodes, ont).Merge(ValidateFlowEdges(g.Edges, g.Nodes, ont))
}
