package topology

import (
	"slices"
	"testing"

	"github.com/matzehuels/ontoflow/pkg/graph"
)

func TestTogglesRefCount(t *testing.T) {
	tg := NewToggles()
	if !tg.Toggle("A", "D") {
		t.Fatal("first toggle should turn the pair on")
	}
	tg.Toggle("B", "D")
	if tg.RefCount("D") != 2 {
		t.Errorf("RefCount = %d, want 2", tg.RefCount("D"))
	}
	if got := tg.Anchors("D"); !slices.Equal(got, []string{"A", "B"}) {
		t.Errorf("Anchors = %v", got)
	}
	if tg.Toggle("A", "D") {
		t.Fatal("second toggle should turn the pair off")
	}
	if tg.IsOn("A", "D") || !tg.IsOn("B", "D") || tg.RefCount("D") != 1 {
		t.Errorf("after A off: A=%v B=%v refs=%d", tg.IsOn("A", "D"), tg.IsOn("B", "D"), tg.RefCount("D"))
	}
	tg.Set("B", "D", true)
	if tg.RefCount("D") != 1 {
		t.Error("Set to current state must be a no-op")
	}
	clone := tg.Clone()
	tg.Toggle("B", "D")
	if tg.Len() != 0 || clone.Len() != 1 {
		t.Errorf("Len = %d, clone Len = %d", tg.Len(), clone.Len())
	}
}

func TestTogglesPairsSorted(t *testing.T) {
	tg := NewToggles()
	tg.Toggle("B", "X")
	tg.Toggle("A", "Z")
	tg.Toggle("A", "Y")
	want := []Pair{{"A", "Y"}, {"A", "Z"}, {"B", "X"}}
	if got := tg.Pairs(); !slices.Equal(got, want) {
		t.Errorf("Pairs = %v, want %v", got, want)
	}
	if got := tg.Dependents("A"); !slices.Equal(got, []string{"Y", "Z"}) {
		t.Errorf("Dependents = %v", got)
	}
	edges := LinkEdges(tg)
	if len(edges) != 3 || edges[0].ID != LinkEdgeID("A", "Y") || edges[0].Type != graph.EdgeLinkedTo {
		t.Errorf("LinkEdges = %v", edges)
	}
}

// TestMultiToggleSequence walks the any-anchor toggle sequence: a dependent
// stays visible while at least one anchor holds it, and only the edge of the
// pair being switched off disappears.
func TestMultiToggleSequence(t *testing.T) {
	nodes, edges := sampleNodes(), sampleEdges()
	tg := NewToggles()

	linkAD, linkBD := LinkEdgeID("A", "D"), LinkEdgeID("B", "D")

	view := Resolve(nodes, edges, tg)
	if view.Visible.Has("D") || view.Visible.Has("V") {
		t.Fatalf("initially visible: %v", view.Visible.Sorted())
	}

	tg.Toggle("A", "D")
	view = Resolve(nodes, edges, tg)
	if !view.Visible.Has("D") || !view.Visible.Has("V") {
		t.Fatalf("(A,D) on: visible %v", view.Visible.Sorted())
	}
	if ids := edgeIDs(view.Edges); !slices.Contains(ids, linkAD) || slices.Contains(ids, linkBD) {
		t.Fatalf("(A,D) on: edges %v", ids)
	}

	tg.Toggle("B", "D")
	view = Resolve(nodes, edges, tg)
	ids := edgeIDs(view.Edges)
	if !view.Visible.Has("D") || !slices.Contains(ids, linkAD) || !slices.Contains(ids, linkBD) {
		t.Fatalf("(B,D) on: visible %v edges %v", view.Visible.Sorted(), ids)
	}

	tg.Toggle("A", "D")
	view = Resolve(nodes, edges, tg)
	ids = edgeIDs(view.Edges)
	if !view.Visible.Has("D") || slices.Contains(ids, linkAD) || !slices.Contains(ids, linkBD) {
		t.Fatalf("(A,D) off: visible %v edges %v", view.Visible.Sorted(), ids)
	}

	tg.Toggle("B", "D")
	view = Resolve(nodes, edges, tg)
	if view.Visible.Has("D") || view.Visible.Has("V") {
		t.Fatalf("(B,D) off: visible %v", view.Visible.Sorted())
	}
	for _, e := range view.Edges {
		if e.Source == "D" || e.Target == "D" {
			t.Errorf("edge %s still touches D", e.ID)
		}
	}
	if want := []string{"ab"}; !slices.Equal(edgeIDs(view.Edges), want) {
		t.Errorf("final edges = %v, want %v", edgeIDs(view.Edges), want)
	}
}

func TestResolveKeepsDeclaredLinkType(t *testing.T) {
	tg := NewToggles()
	tg.Toggle("B", "D")
	tg.Toggle("A", "ghost")
	view := Resolve(sampleNodes(), sampleEdges(), tg)
	var found bool
	for _, e := range view.Edges {
		if e.Target == "ghost" {
			t.Error("pair naming an unknown node produced an edge")
		}
		if e.ID == LinkEdgeID("B", "D") {
			found = true
			if e.Type != "mental-phase-define" {
				t.Errorf("derived type = %q, want declared mental-phase-define", e.Type)
			}
		}
	}
	if !found {
		t.Error("derived edge missing")
	}
	if nodes := view.VisibleNodes(sampleNodes()); len(nodes) != 5 {
		t.Errorf("VisibleNodes = %v", graph.NodeIDs(nodes))
	}
}

func TestAvailableToggles(t *testing.T) {
	edges := append(sampleEdges(), graph.Edge{ID: "x", Source: "A", Target: "D", Type: graph.EdgeLinkedTo})
	edges = append(edges, graph.Edge{ID: "y", Source: "A", Target: "ghost", Type: graph.EdgeLinkedTo})
	got := AvailableToggles(sampleNodes(), edges)
	want := []Pair{{"A", "D"}, {"B", "D"}}
	if !slices.Equal(got, want) {
		t.Errorf("AvailableToggles = %v, want %v", got, want)
	}
}

func TestChangedEdges(t *testing.T) {
	before := []graph.Edge{{ID: "a"}, {ID: "b"}}
	after := []graph.Edge{{ID: "b"}, {ID: "c"}}
	if got := edgeIDs(ChangedEdges(before, after)); !slices.Equal(got, []string{"a", "c"}) {
		t.Errorf("ChangedEdges = %v", got)
	}
}

func TestResolveIgnoresDisallowedParentEdges(t *testing.T) {
	nodes := []graph.Node{
		{ID: "p", Type: graph.TypePhase},
		{ID: "v", Type: graph.TypeVisualization},
		{ID: "v2", Type: graph.TypeVisualization},
	}
	edges := []graph.Edge{
		{ID: "pv", Source: "p", Target: "v", Type: graph.EdgeVisualizes},
		{ID: "vv2", Source: "v", Target: "v2", Type: graph.EdgeVisualizes},
	}
	view := Resolve(nodes, edges, NewToggles())
	if got := view.Visible.Sorted(); !slices.Equal(got, []string{"p"}) {
		t.Errorf("visible = %v, want [p]", got)
	}
	if len(view.Edges) != 0 {
		t.Errorf("edges = %v, want none", edgeIDs(view.Edges))
	}
}
