package topology

import (
	"slices"
	"strings"

	"github.com/matzehuels/ontoflow/pkg/graph"
	"github.com/matzehuels/ontoflow/pkg/ontology"
)

// Event is a change that may move a node.
type Event string

const (
	EventEdgeAdded   Event = "edge-added"
	EventEdgeRemoved Event = "edge-removed"
	EventParentMoved Event = "parent-moved"
	EventUserDragged Event = "user-dragged"
)

// EdgeMatcher matches edge types exactly or by prefix.
type EdgeMatcher struct {
	Types    []string
	Prefixes []string
}

// Match reports whether edgeType belongs to the matcher.
func (m EdgeMatcher) Match(edgeType string) bool {
	if slices.Contains(m.Types, edgeType) {
		return true
	}
	for _, p := range m.Prefixes {
		if strings.HasPrefix(edgeType, p) {
			return true
		}
	}
	return false
}

// ParentRule makes a node type visible only through an incoming edge
// matching Via from a visible node. From lists the node types allowed at
// the source of such an edge.
type ParentRule struct {
	Via  EdgeMatcher
	From []string
}

// Rules is the topology vocabulary.
type Rules struct {
	// Known node types. Anything else is invisible and inert.
	Known Set
	// Anchors are node types that may hold toggle pairs.
	Anchors []string
	// Parents maps each dependent node type to its required-parent rule.
	Parents map[string]ParentRule
	// AnchorLink matches edges derived from toggle pairs.
	AnchorLink EdgeMatcher
	// Cascade matches edges whose target is deleted with the source.
	Cascade EdgeMatcher
	// CascadeSources are node types whose cascade edges are followed.
	CascadeSources []string
	// Recalc lists, per node type, the events that trigger a new position.
	Recalc map[string][]Event
}

// DefaultRules returns the built-in vocabulary: phases anchor mental
// models through linked-to and mental-phase-* edges; mental models
// cascade to visualizations through visualizes edges.
func DefaultRules() Rules {
	anchorLink := EdgeMatcher{
		Types:    []string{graph.EdgeLinkedTo},
		Prefixes: []string{graph.EdgeMentalPhasePrefix},
	}
	cascade := EdgeMatcher{Types: []string{graph.EdgeVisualizes}}
	return Rules{
		Known: NewSet(
			graph.TypePhase,
			graph.TypeSubPhase,
			graph.TypeComponent,
			graph.TypeMentalModel,
			graph.TypeVisualization,
		),
		Anchors: []string{graph.TypePhase},
		Parents: map[string]ParentRule{
			graph.TypeMentalModel:   {Via: anchorLink, From: []string{graph.TypePhase}},
			graph.TypeVisualization: {Via: cascade, From: []string{graph.TypeMentalModel}},
		},
		AnchorLink:     anchorLink,
		Cascade:        cascade,
		CascadeSources: []string{graph.TypeMentalModel},
		Recalc: map[string][]Event{
			graph.TypeMentalModel:   {EventEdgeAdded, EventEdgeRemoved},
			graph.TypeVisualization: {EventParentMoved},
		},
	}
}

// RulesFromOntology adapts [DefaultRules] to ont: every declared node type
// is known, and the anchor types become the declared source types of the
// ontology's anchor-link edge types.
func RulesFromOntology(ont *ontology.Ontology) Rules {
	r := DefaultRules()
	if ont == nil {
		return r
	}
	for _, id := range ont.NodeTypeIDs() {
		r.Known.Add(id)
	}

	var anchors []string
	for _, et := range ont.EdgeTypes {
		if !r.AnchorLink.Match(et.ID) {
			continue
		}
		for _, st := range et.SourceTypes {
			if !slices.Contains(anchors, st) {
				anchors = append(anchors, st)
			}
		}
	}
	if len(anchors) > 0 {
		r.Anchors = anchors
		mm := r.Parents[graph.TypeMentalModel]
		mm.From = anchors
		r.Parents[graph.TypeMentalModel] = mm
	}
	return r
}

// IsDependent reports whether nodeType's visibility is derived.
func (r Rules) IsDependent(nodeType string) bool {
	_, ok := r.Parents[nodeType]
	return ok
}

// IsAnchor reports whether nodeType may hold toggle pairs.
func (r Rules) IsAnchor(nodeType string) bool {
	return slices.Contains(r.Anchors, nodeType)
}
