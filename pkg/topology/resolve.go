package topology

import (
	"slices"

	"github.com/matzehuels/ontoflow/pkg/graph"
)

// View is the visible part of a graph for one toggle state.
type View struct {
	Visible Set
	Edges   []graph.Edge
}

// Resolve computes the visible nodes and rendered edges.
//
// Declared anchor-link edges only describe which pairs are available; they
// are replaced by edges derived from the pairs that are on. Pairs naming
// unknown nodes are ignored, and so are edges into a dependent type that
// its parent rule does not allow, such as a visualizes edge from a phase.
// Visibility is iterated to a fixed point so
// that chains (phase, mental model, visualization) settle in one call.
// Edges are kept when both endpoints are visible: static edges in input
// order, then derived edges in pair order.
func (r Rules) Resolve(nodes []graph.Node, edges []graph.Edge, toggles *Toggles) View {
	exists := graph.NodeMap(nodes)
	types := graph.NodeTypes(nodes)

	declared := map[Pair]string{}
	var all []graph.Edge
	for _, e := range edges {
		if r.AnchorLink.Match(e.Type) {
			p := Pair{Anchor: e.Source, Dependent: e.Target}
			if _, ok := declared[p]; !ok {
				declared[p] = e.Type
			}
			continue
		}
		all = append(all, e)
	}
	if toggles != nil {
		for _, e := range linkEdges(toggles, declared) {
			_, okSrc := exists[e.Source]
			_, okTgt := exists[e.Target]
			if okSrc && okTgt {
				all = append(all, e)
			}
		}
	}

	all = slices.DeleteFunc(all, func(e graph.Edge) bool {
		tt := types[e.Target]
		return r.IsDependent(tt) && !r.IsEdgeAllowed(types[e.Source], tt, e.Type)
	})

	visible := Set{}
	for changed := true; changed; {
		changed = false
		for _, n := range nodes {
			if visible.Has(n.ID) {
				continue
			}
			if r.ShouldNodeBeVisible(n.ID, n.Type, all, visible) {
				visible.Add(n.ID)
				changed = true
			}
		}
	}

	kept := make([]graph.Edge, 0, len(all))
	for _, e := range all {
		if visible.Has(e.Source) && visible.Has(e.Target) {
			kept = append(kept, e)
		}
	}
	return View{Visible: visible, Edges: kept}
}

// Resolve applies [Rules.Resolve] with [DefaultRules].
func Resolve(nodes []graph.Node, edges []graph.Edge, toggles *Toggles) View {
	return DefaultRules().Resolve(nodes, edges, toggles)
}

// VisibleNodes filters nodes to the members of v.Visible, preserving order.
func (v View) VisibleNodes(nodes []graph.Node) []graph.Node {
	out := make([]graph.Node, 0, v.Visible.Len())
	for _, n := range nodes {
		if v.Visible.Has(n.ID) {
			out = append(out, n)
		}
	}
	return out
}

// AvailableToggles lists the pairs declared by anchor-link edges between
// existing nodes, in edge order without duplicates.
func (r Rules) AvailableToggles(nodes []graph.Node, edges []graph.Edge) []Pair {
	types := graph.NodeTypes(nodes)
	var out []Pair
	for _, e := range edges {
		if !r.AnchorLink.Match(e.Type) {
			continue
		}
		if _, ok := types[e.Source]; !ok {
			continue
		}
		if _, ok := types[e.Target]; !ok {
			continue
		}
		p := Pair{Anchor: e.Source, Dependent: e.Target}
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

// AvailableToggles applies [Rules.AvailableToggles] with [DefaultRules].
func AvailableToggles(nodes []graph.Node, edges []graph.Edge) []Pair {
	return DefaultRules().AvailableToggles(nodes, edges)
}

// ChangedEdges returns the edges present in exactly one of before and
// after, keyed by id: removed edges first, then added ones.
func ChangedEdges(before, after []graph.Edge) []graph.Edge {
	inBefore := make(map[string]bool, len(before))
	for _, e := range before {
		inBefore[e.ID] = true
	}
	inAfter := make(map[string]bool, len(after))
	for _, e := range after {
		inAfter[e.ID] = true
	}
	var out []graph.Edge
	for _, e := range before {
		if !inAfter[e.ID] {
			out = append(out, e)
		}
	}
	for _, e := range after {
		if !inBefore[e.ID] {
			out = append(out, e)
		}
	}
	return out
}
