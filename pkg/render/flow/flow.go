package flow

import (
	"maps"

	"github.com/matzehuels/ontoflow/pkg/graph"
	"github.com/matzehuels/ontoflow/pkg/ontology"
)

// =============================================================================
// Records
// =============================================================================

// Node is a render-sink node record.
type Node struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Position graph.Position `json:"position"`
	Data     NodeData       `json:"data"`
}

// NodeData is the payload a node variant renders.
type NodeData struct {
	Label       string         `json:"label"`
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Type        string         `json:"type"`
	Properties  map[string]any `json:"properties,omitempty"`
}

// EdgeStyle is the stroke of an edge.
type EdgeStyle struct {
	Stroke          string  `json:"stroke"`
	StrokeWidth     float64 `json:"strokeWidth"`
	StrokeDasharray string  `json:"strokeDasharray,omitempty"`
}

// Edge is a render-sink edge record.
type Edge struct {
	ID        string           `json:"id"`
	Source    string           `json:"source"`
	Target    string           `json:"target"`
	Label     string           `json:"label"`
	Style     EdgeStyle        `json:"style"`
	Animated  bool             `json:"animated"`
	Waypoints []graph.Position `json:"waypoints,omitempty"`
}

// Graph is one full frame.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// =============================================================================
// Style Table
// =============================================================================

// DefaultStyle is applied to relationship types missing from the table.
var DefaultStyle = ontology.Style{Stroke: "#94a3b8", StrokeWidth: 1}

var defaultStyles = map[string]ontology.Style{
	graph.EdgeContains:    {Stroke: "#64748b", StrokeWidth: 2},
	graph.EdgePrecedes:    {Stroke: "#3b82f6", StrokeWidth: 2, Flow: true},
	graph.EdgeLinkedTo:    {Stroke: "#8b5cf6", StrokeWidth: 2, Dash: "5,5"},
	graph.EdgeVisualizes:  {Stroke: "#10b981", StrokeWidth: 1.5, Dash: "3,3"},
	graph.EdgeUses:        {Stroke: "#f59e0b", StrokeWidth: 1.5},
	graph.EdgeComposition: {Stroke: "#ef4444", StrokeWidth: 2},
}

// mentalPhaseStyle covers the mental-phase-* family.
var mentalPhaseStyle = ontology.Style{Stroke: "#a855f7", StrokeWidth: 2, Dash: "5,5"}

// DefaultStyles returns a copy of the built-in type to style table.
func DefaultStyles() map[string]ontology.Style { return maps.Clone(defaultStyles) }

// =============================================================================
// Builder
// =============================================================================

// Builder converts domain entities into render records. The zero value
// uses the built-in style table.
type Builder struct {
	styles map[string]ontology.Style
	labels map[string]string
	routes map[string][]graph.Position
}

// NewBuilder returns a builder with the built-in style table.
func NewBuilder() *Builder { return &Builder{} }

// WithStyles returns a copy of b in which styles override the built-in
// table per relationship type.
func (b *Builder) WithStyles(styles map[string]ontology.Style) *Builder {
	out := b.clone()
	if out.styles == nil {
		out.styles = make(map[string]ontology.Style, len(styles))
	}
	maps.Copy(out.styles, styles)
	return out
}

// WithLabels returns a copy of b that labels edges with the given
// relationship names instead of their type ids.
func (b *Builder) WithLabels(labels map[string]string) *Builder {
	out := b.clone()
	if out.labels == nil {
		out.labels = make(map[string]string, len(labels))
	}
	maps.Copy(out.labels, labels)
	return out
}

// WithRoutes returns a copy of b that attaches waypoints to edges by id.
func (b *Builder) WithRoutes(routes map[string][]graph.Position) *Builder {
	out := b.clone()
	out.routes = routes
	return out
}

func (b *Builder) clone() *Builder {
	if b == nil {
		return &Builder{}
	}
	return &Builder{styles: maps.Clone(b.styles), labels: maps.Clone(b.labels), routes: b.routes}
}

// Style resolves the style of a relationship type.
func (b *Builder) Style(edgeType string) ontology.Style {
	if b != nil {
		if s, ok := b.styles[edgeType]; ok {
			return s
		}
	}
	if s, ok := defaultStyles[edgeType]; ok {
		return s
	}
	if graph.IsAnchorLinkType(edgeType) {
		return mentalPhaseStyle
	}
	return DefaultStyle
}

// Label resolves the display name of a relationship type, falling back to
// the type id.
func (b *Builder) Label(edgeType string) string {
	if b != nil {
		if l := b.labels[edgeType]; l != "" {
			return l
		}
	}
	return edgeType
}

// Node builds the record for n at pos.
func (b *Builder) Node(n graph.Node, pos graph.Position) Node {
	return Node{
		ID:       n.ID,
		Type:     n.Type,
		Position: pos,
		Data: NodeData{
			Label:       n.DisplayName(),
			Name:        n.Name,
			Description: n.Description,
			Type:        n.Type,
			Properties:  maps.Clone(n.Properties),
		},
	}
}

// Edge builds the record for e.
func (b *Builder) Edge(e graph.Edge) Edge {
	s := b.Style(e.Type)
	out := Edge{
		ID:     e.ID,
		Source: e.Source,
		Target: e.Target,
		Label:  b.Label(e.Type),
		Style: EdgeStyle{
			Stroke:          s.Stroke,
			StrokeWidth:     s.StrokeWidth,
			StrokeDasharray: s.Dash,
		},
		Animated: e.Type == graph.EdgePrecedes || s.Flow,
	}
	if b != nil {
		if wp, ok := b.routes[e.ID]; ok {
			out.Waypoints = append([]graph.Position(nil), wp...)
		}
	}
	return out
}

// Graph builds a full frame. When positions is non-nil each node is placed
// at its entry there, or at the origin when missing. When positions is nil
// each node keeps its own position, or the origin when it has none.
func (b *Builder) Graph(nodes []graph.Node, edges []graph.Edge, positions map[string]graph.Position) Graph {
	out := Graph{
		Nodes: make([]Node, len(nodes)),
		Edges: make([]Edge, len(edges)),
	}
	for i, n := range nodes {
		pos := n.PositionOr(graph.Origin)
		if positions != nil {
			pos = positions[n.ID]
		}
		out.Nodes[i] = b.Node(n, pos)
	}
	for i, e := range edges {
		out.Edges[i] = b.Edge(e)
	}
	return out
}

// BuildNode builds a node record with the default builder.
func BuildNode(n graph.Node, pos graph.Position) Node { return NewBuilder().Node(n, pos) }

// BuildEdge builds an edge record with the default builder.
func BuildEdge(e graph.Edge) Edge { return NewBuilder().Edge(e) }

// BuildGraph builds a frame with the default builder.
func BuildGraph(nodes []graph.Node, edges []graph.Edge, positions map[string]graph.Position) Graph {
	return NewBuilder().Graph(nodes, edges, positions)
}
