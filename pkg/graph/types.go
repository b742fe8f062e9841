package graph

import (
	"maps"
	"strings"
)

// =============================================================================
// Type Vocabulary
// =============================================================================

// Node types known to the topology rules. Ontologies may declare more.
const (
	TypePhase         = "phase"
	TypeSubPhase      = "sub-phase"
	TypeComponent     = "component"
	TypeMentalModel   = "mental-model"
	TypeVisualization = "visualization"
)

// Edge (relationship) types.
const (
	EdgeContains    = "contains"
	EdgePrecedes    = "precedes"
	EdgeLinkedTo    = "linked-to"
	EdgeVisualizes  = "visualizes"
	EdgeUses        = "uses"
	EdgeComposition = "composition"

	// EdgeMentalPhasePrefix prefixes the per-phase anchor-link family
	// (e.g. "mental-phase-discover").
	EdgeMentalPhasePrefix = "mental-phase-"
)

// IsAnchorLinkType reports whether t is an anchor-link relationship:
// "linked-to" or any member of the "mental-phase-*" family.
func IsAnchorLinkType(t string) bool {
	return t == EdgeLinkedTo || strings.HasPrefix(t, EdgeMentalPhasePrefix)
}

// =============================================================================
// Position
// =============================================================================

// Position is a coordinate in layout space. Y grows downward, matching the
// renderer's screen coordinates.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Origin is the position assigned to nodes with no known coordinate.
var Origin = Position{}

// Add returns p + q.
func (p Position) Add(q Position) Position { return Position{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p - q.
func (p Position) Sub(q Position) Position { return Position{X: p.X - q.X, Y: p.Y - q.Y} }

// Scale returns p scaled by f.
func (p Position) Scale(f float64) Position { return Position{X: p.X * f, Y: p.Y * f} }

// =============================================================================
// Node
// =============================================================================

// NodeLayout is a per-node layout override declared in the flow document.
type NodeLayout struct {
	Algorithm  string         `json:"algorithm" yaml:"algorithm"`
	Parameters map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// Node is a typed vertex of the flow graph.
type Node struct {
	ID          string         `json:"id" yaml:"id"`
	Type        string         `json:"type" yaml:"type"`
	Name        string         `json:"name,omitempty" yaml:"name,omitempty"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Properties  map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
	Position    *Position      `json:"position,omitempty" yaml:"position,omitempty"`
	Layout      *NodeLayout    `json:"layout,omitempty" yaml:"layout,omitempty"`
}

// DisplayName returns the name if set, otherwise the ID.
func (n Node) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// PositionOr returns the node's position, or fallback when it has none.
func (n Node) PositionOr(fallback Position) Position {
	if n.Position != nil {
		return *n.Position
	}
	return fallback
}

// WithPosition returns a copy of n placed at p. The receiver is not modified.
func (n Node) WithPosition(p Position) Node {
	n.Position = &p
	return n
}

// Clone returns a deep copy of n.
func (n Node) Clone() Node {
	out := n
	out.Properties = maps.Clone(n.Properties)
	if n.Position != nil {
		p := *n.Position
		out.Position = &p
	}
	if n.Layout != nil {
		l := *n.Layout
		l.Parameters = maps.Clone(n.Layout.Parameters)
		out.Layout = &l
	}
	return out
}

// =============================================================================
// Edge
// =============================================================================

// Edge is a directed, typed relationship between two nodes.
type Edge struct {
	ID         string         `json:"id" yaml:"id"`
	Source     string         `json:"source" yaml:"source"`
	Target     string         `json:"target" yaml:"target"`
	Type       string         `json:"type" yaml:"type"`
	Properties map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// Clone returns a deep copy of e.
func (e Edge) Clone() Edge {
	out := e
	out.Properties = maps.Clone(e.Properties)
	return out
}

// =============================================================================
// Graph
// =============================================================================

// Graph is an ordered node/edge collection.
type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// Clone returns a deep copy of g.
func (g Graph) Clone() Graph {
	return Graph{Nodes: CloneNodes(g.Nodes), Edges: CloneEdges(g.Edges)}
}

// Node returns the node with the given id.
func (g Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// CloneNodes deep-copies a node slice.
func CloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// CloneEdges deep-copies an edge slice.
func CloneEdges(edges []Edge) []Edge {
	if edges == nil {
		return nil
	}
	out := make([]Edge, len(edges))
	for i, e := range edges {
		out[i] = e.Clone()
	}
	return out
}

// NodeMap indexes nodes by id. Later duplicates win.
func NodeMap(nodes []Node) map[string]Node {
	m := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		m[n.ID] = n
	}
	return m
}

// NodeTypes maps node id to node type.
func NodeTypes(nodes []Node) map[string]string {
	m := make(map[string]string, len(nodes))
	for _, n := range nodes {
		m[n.ID] = n.Type
	}
	return m
}

// Positions collects the known positions of nodes, keyed by id.
// Nodes without a position are omitted.
func Positions(nodes []Node) map[string]Position {
	m := make(map[string]Position, len(nodes))
	for _, n := range nodes {
		if n.Position != nil {
			m[n.ID] = *n.Position
		}
	}
	return m
}

// NodeIDs extracts the ID from each node, preserving order.
func NodeIDs(nodes []Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
