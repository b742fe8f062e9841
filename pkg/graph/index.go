package graph

import "slices"

// Index provides adjacency lookups over a node/edge snapshot.
//
// Edges whose endpoints are not in the node list are ignored. Neighbour
// lists follow edge order and contain no duplicates. The zero value is not
// usable; build one with [NewIndex]. An Index never changes after
// construction and is safe for concurrent reads.
type Index struct {
	order    []string
	nodes    map[string]Node
	children map[string][]string
	parents  map[string][]string
}

// NewIndex builds an adjacency index for nodes and edges.
func NewIndex(nodes []Node, edges []Edge) *Index {
	idx := &Index{
		order:    make([]string, 0, len(nodes)),
		nodes:    make(map[string]Node, len(nodes)),
		children: make(map[string][]string, len(nodes)),
		parents:  make(map[string][]string, len(nodes)),
	}
	for _, n := range nodes {
		if _, dup := idx.nodes[n.ID]; dup {
			continue
		}
		idx.order = append(idx.order, n.ID)
		idx.nodes[n.ID] = n
	}
	for _, e := range edges {
		if !idx.Has(e.Source) || !idx.Has(e.Target) || e.Source == e.Target {
			continue
		}
		if slices.Contains(idx.children[e.Source], e.Target) {
			continue
		}
		idx.children[e.Source] = append(idx.children[e.Source], e.Target)
		idx.parents[e.Target] = append(idx.parents[e.Target], e.Source)
	}
	return idx
}

// Has reports whether id is a node in the index.
func (x *Index) Has(id string) bool {
	_, ok := x.nodes[id]
	return ok
}

// Node returns the node with the given id.
func (x *Index) Node(id string) (Node, bool) {
	n, ok := x.nodes[id]
	return n, ok
}

// IDs returns node ids in input order.
func (x *Index) IDs() []string { return x.order }

// Len returns the number of distinct nodes.
func (x *Index) Len() int { return len(x.order) }

// Children returns the targets of edges leaving id.
func (x *Index) Children(id string) []string { return x.children[id] }

// Parents returns the sources of edges entering id.
func (x *Index) Parents(id string) []string { return x.parents[id] }

// Neighbors returns children followed by parents not already listed.
func (x *Index) Neighbors(id string) []string {
	out := slices.Clone(x.children[id])
	for _, p := range x.parents[id] {
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

// Sources returns nodes with no incoming edges, in input order.
func (x *Index) Sources() []string {
	var out []string
	for _, id := range x.order {
		if len(x.parents[id]) == 0 {
			out = append(out, id)
		}
	}
	return out
}
