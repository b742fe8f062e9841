package topology

import (
	"cmp"
	"slices"

	"github.com/matzehuels/ontoflow/pkg/graph"
)

// Pair is a toggle pair: Anchor currently wants Dependent visible.
type Pair struct {
	Anchor    string `json:"anchor"`
	Dependent string `json:"dependent"`
}

func comparePairs(a, b Pair) int {
	if c := cmp.Compare(a.Anchor, b.Anchor); c != 0 {
		return c
	}
	return cmp.Compare(a.Dependent, b.Dependent)
}

// Toggles is the toggle relation: an anchor to dependents adjacency with a
// per-dependent reference count. The zero value is not usable; create one
// with [NewToggles]. Toggles is not safe for concurrent mutation.
type Toggles struct {
	byAnchor map[string]Set
	refs     map[string]int
}

// NewToggles returns an empty toggle relation.
func NewToggles() *Toggles {
	return &Toggles{byAnchor: map[string]Set{}, refs: map[string]int{}}
}

// Toggle flips the pair (anchor, dependent) and returns its new state.
func (t *Toggles) Toggle(anchor, dependent string) bool {
	on := !t.IsOn(anchor, dependent)
	t.Set(anchor, dependent, on)
	return on
}

// Set turns the pair on or off. Setting a pair to its current state is a
// no-op.
func (t *Toggles) Set(anchor, dependent string, on bool) {
	if t.IsOn(anchor, dependent) == on {
		return
	}
	if on {
		deps, ok := t.byAnchor[anchor]
		if !ok {
			deps = Set{}
			t.byAnchor[anchor] = deps
		}
		deps.Add(dependent)
		t.refs[dependent]++
		return
	}
	deps := t.byAnchor[anchor]
	deps.Remove(dependent)
	if deps.Len() == 0 {
		delete(t.byAnchor, anchor)
	}
	if t.refs[dependent]--; t.refs[dependent] <= 0 {
		delete(t.refs, dependent)
	}
}

// IsOn reports whether the pair is on.
func (t *Toggles) IsOn(anchor, dependent string) bool {
	return t.byAnchor[anchor].Has(dependent)
}

// RefCount returns the number of anchors holding dependent.
func (t *Toggles) RefCount(dependent string) int { return t.refs[dependent] }

// Anchors returns the anchors holding dependent, sorted.
func (t *Toggles) Anchors(dependent string) []string {
	var out []string
	for a, deps := range t.byAnchor {
		if deps.Has(dependent) {
			out = append(out, a)
		}
	}
	slices.Sort(out)
	return out
}

// Dependents returns the dependents held by anchor, sorted.
func (t *Toggles) Dependents(anchor string) []string {
	return t.byAnchor[anchor].Sorted()
}

// Pairs returns every pair that is on, sorted by anchor then dependent.
func (t *Toggles) Pairs() []Pair {
	var out []Pair
	for a, deps := range t.byAnchor {
		for d := range deps {
			out = append(out, Pair{Anchor: a, Dependent: d})
		}
	}
	slices.SortFunc(out, comparePairs)
	return out
}

// Len returns the number of pairs that are on.
func (t *Toggles) Len() int {
	n := 0
	for _, deps := range t.byAnchor {
		n += deps.Len()
	}
	return n
}

// Clone returns an independent copy.
func (t *Toggles) Clone() *Toggles {
	out := NewToggles()
	for _, p := range t.Pairs() {
		out.Set(p.Anchor, p.Dependent, true)
	}
	return out
}

// LinkEdgeID is the id of the anchor-link edge derived from a pair.
func LinkEdgeID(anchor, dependent string) string {
	return "link:" + anchor + "->" + dependent
}

// LinkEdges returns the linked-to edges derived from the pairs that are on,
// in [Toggles.Pairs] order.
func LinkEdges(t *Toggles) []graph.Edge {
	return linkEdges(t, nil)
}

// linkEdges derives anchor-link edges, taking the edge type of a matching
// declared edge when there is one.
func linkEdges(t *Toggles, declared map[Pair]string) []graph.Edge {
	pairs := t.Pairs()
	out := make([]graph.Edge, 0, len(pairs))
	for _, p := range pairs {
		typ := graph.EdgeLinkedTo
		if d, ok := declared[p]; ok {
			typ = d
		}
		out = append(out, graph.Edge{
			ID:     LinkEdgeID(p.Anchor, p.Dependent),
			Source: p.Anchor,
			Target: p.Dependent,
			Type:   typ,
		})
	}
	return out
}
