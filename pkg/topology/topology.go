package topology

import (
	"slices"

	"github.com/matzehuels/ontoflow/pkg/graph"
)

// =============================================================================
// Visibility
// =============================================================================

// ShouldNodeBeVisible reports whether a node is visible given the current
// edges and the set of nodes already known to be visible.
//
// Known types without a parent rule are always visible. A dependent type
// is visible when at least one incoming edge of its rule's kind comes from
// a visible node. Unknown types are invisible.
func (r Rules) ShouldNodeBeVisible(nodeID, nodeType string, edges []graph.Edge, visible Set) bool {
	if !r.Known.Has(nodeType) {
		return false
	}
	rule, ok := r.Parents[nodeType]
	if !ok {
		return true
	}
	for _, e := range edges {
		if e.Target == nodeID && rule.Via.Match(e.Type) && visible.Has(e.Source) {
			return true
		}
	}
	return false
}

// ShouldNodeBeVisible applies [Rules.ShouldNodeBeVisible] with [DefaultRules].
func ShouldNodeBeVisible(nodeID, nodeType string, edges []graph.Edge, visible Set) bool {
	return DefaultRules().ShouldNodeBeVisible(nodeID, nodeType, edges, visible)
}

// =============================================================================
// Cascade
// =============================================================================

// CascadeDeleteNodes returns the nodes one cascade edge away from nodeID,
// in edge order without duplicates. The result is empty, never nil, when
// nodeType does not cascade.
func (r Rules) CascadeDeleteNodes(nodeID, nodeType string, edges []graph.Edge) []string {
	out := []string{}
	if !slices.Contains(r.CascadeSources, nodeType) {
		return out
	}
	for _, e := range edges {
		if e.Source == nodeID && r.Cascade.Match(e.Type) && !slices.Contains(out, e.Target) {
			out = append(out, e.Target)
		}
	}
	return out
}

// CascadeDeleteNodes applies [Rules.CascadeDeleteNodes] with [DefaultRules].
func CascadeDeleteNodes(nodeID, nodeType string, edges []graph.Edge) []string {
	return DefaultRules().CascadeDeleteNodes(nodeID, nodeType, edges)
}

// BuildDependencyMap maps every node to the nodes that cascade-depend on it
// directly. Every node in nodes has an entry; nodes without dependents map
// to an empty set.
func (r Rules) BuildDependencyMap(nodes []graph.Node, edges []graph.Edge) map[string]Set {
	deps := make(map[string]Set, len(nodes))
	types := graph.NodeTypes(nodes)
	for _, n := range nodes {
		deps[n.ID] = Set{}
	}
	for _, e := range edges {
		if !r.Cascade.Match(e.Type) {
			continue
		}
		src, ok := deps[e.Source]
		if !ok || !slices.Contains(r.CascadeSources, types[e.Source]) {
			continue
		}
		if _, ok := deps[e.Target]; ok && e.Target != e.Source {
			src.Add(e.Target)
		}
	}
	return deps
}

// BuildDependencyMap applies [Rules.BuildDependencyMap] with [DefaultRules].
func BuildDependencyMap(nodes []graph.Node, edges []graph.Edge) map[string]Set {
	return DefaultRules().BuildDependencyMap(nodes, edges)
}

// CascadeClosure returns every node reachable from roots through deps,
// excluding the roots themselves unless they are reachable from another
// root. Nodes in stop are neither included nor traversed.
func CascadeClosure(deps map[string]Set, roots []string, stop Set) Set {
	out := Set{}
	queue := slices.Clone(roots)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, d := range deps[id].Sorted() {
			if out.Has(d) || stop.Has(d) {
				continue
			}
			out.Add(d)
			queue = append(queue, d)
		}
	}
	return out
}

// =============================================================================
// Position Recalculation
// =============================================================================

// ShouldRecalculatePosition reports whether event should move the node.
// Dragged nodes never move, and a user-dragged event never moves anyone.
func (r Rules) ShouldRecalculatePosition(nodeID, nodeType string, event Event, dragged Set) bool {
	if dragged.Has(nodeID) || event == EventUserDragged {
		return false
	}
	return slices.Contains(r.Recalc[nodeType], event)
}

// ShouldRecalculatePosition applies [Rules.ShouldRecalculatePosition] with
// [DefaultRules].
func ShouldRecalculatePosition(nodeID, nodeType string, event Event, dragged Set) bool {
	return DefaultRules().ShouldRecalculatePosition(nodeID, nodeType, event, dragged)
}

// NodesRequiringRecalculation returns the nodes to lay out again after
// changed edges were added or removed: each eligible endpoint of a changed
// edge, plus everything that transitively cascade-depends on an included
// node. Dragged nodes are never included.
func (r Rules) NodesRequiringRecalculation(changed []graph.Edge, allNodes []graph.Node, allEdges []graph.Edge, dragged Set) Set {
	types := graph.NodeTypes(allNodes)
	out := Set{}
	for _, e := range changed {
		for _, id := range [2]string{e.Source, e.Target} {
			typ, ok := types[id]
			if !ok || out.Has(id) {
				continue
			}
			if r.ShouldRecalculatePosition(id, typ, EventEdgeAdded, dragged) ||
				r.ShouldRecalculatePosition(id, typ, EventEdgeRemoved, dragged) {
				out.Add(id)
			}
		}
	}
	deps := r.BuildDependencyMap(allNodes, allEdges)
	for id := range CascadeClosure(deps, out.Sorted(), dragged) {
		out.Add(id)
	}
	return out
}

// NodesRequiringRecalculation applies [Rules.NodesRequiringRecalculation]
// with [DefaultRules].
func NodesRequiringRecalculation(changed []graph.Edge, allNodes []graph.Node, allEdges []graph.Edge, dragged Set) Set {
	return DefaultRules().NodesRequiringRecalculation(changed, allNodes, allEdges, dragged)
}

// =============================================================================
// Edge Legality
// =============================================================================

// IsEdgeAllowed reports whether an edge of edgeType may connect the given
// node types. Edges into a dependent type must match its parent rule;
// any other edge touching a dependent type is rejected. Edges between
// non-dependent types are left to the ontology validator.
func (r Rules) IsEdgeAllowed(sourceType, targetType, edgeType string) bool {
	if rule, ok := r.Parents[targetType]; ok {
		return rule.Via.Match(edgeType) && slices.Contains(rule.From, sourceType)
	}
	if r.IsDependent(sourceType) {
		return false
	}
	return true
}

// IsEdgeAllowed applies [Rules.IsEdgeAllowed] with [DefaultRules].
func IsEdgeAllowed(sourceType, targetType, edgeType string) bool {
	return DefaultRules().IsEdgeAllowed(sourceType, targetType, edgeType)
}
