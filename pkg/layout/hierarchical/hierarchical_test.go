package hierarchical

import (
	"context"
	"math"
	"slices"
	"testing"

	"github.com/matzehuels/ontoflow/pkg/errors"
	"github.com/matzehuels/ontoflow/pkg/graph"
)

func rootTwoChildren() ([]graph.Node, []graph.Edge) {
	return []graph.Node{{ID: "root"}, {ID: "left"}, {ID: "right"}},
		[]graph.Edge{
			{ID: "e1", Source: "root", Target: "left"},
			{ID: "e2", Source: "root", Target: "right"},
		}
}

func byID(nodes []graph.Node) map[string]graph.Position {
	return graph.Positions(nodes)
}

func TestLayoutTB(t *testing.T) {
	nodes, edges := rootTwoChildren()
	out, err := Layout(context.Background(), nodes, edges, DefaultParams(), nil)
	if err != nil {
		t.Fatal(err)
	}
	pos := byID(out)
	root, l, r := pos["root"], pos["left"], pos["right"]
	if !(root.Y < l.Y && root.Y < r.Y) {
		t.Errorf("root rank %v should precede children %v, %v", root.Y, l.Y, r.Y)
	}
	if math.Abs(l.Y-r.Y) >= 10 {
		t.Errorf("children rank coordinates differ: %v vs %v", l.Y, r.Y)
	}
	if math.Abs(l.X-r.X) < DefaultParams().NodeSeparation {
		t.Errorf("children too close on spread axis: %v vs %v", l.X, r.X)
	}
	if root.X != 0 || l.X+r.X != 0 {
		t.Errorf("spread axis not centred: root %v, children %v %v", root.X, l.X, r.X)
	}
}

func TestDirections(t *testing.T) {
	nodes, edges := rootTwoChildren()
	tests := []struct {
		dir   Direction
		check func(root, child graph.Position) bool
	}{
		{TopBottom, func(r, c graph.Position) bool { return c.Y > r.Y }},
		{BottomTop, func(r, c graph.Position) bool { return c.Y < r.Y }},
		{LeftRight, func(r, c graph.Position) bool { return c.X > r.X }},
		{RightLeft, func(r, c graph.Position) bool { return c.X < r.X }},
		{"lr", func(r, c graph.Position) bool { return c.X > r.X }},
	}
	for _, tt := range tests {
		t.Run(string(tt.dir), func(t *testing.T) {
			p := DefaultParams()
			p.Direction = tt.dir
			out, err := Layout(context.Background(), nodes, edges, p, nil)
			if err != nil {
				t.Fatal(err)
			}
			pos := byID(out)
			if !tt.check(pos["root"], pos["left"]) {
				t.Errorf("root %v, child %v", pos["root"], pos["left"])
			}
		})
	}
}

func TestLongestPathAndCycles(t *testing.T) {
	nodes := []graph.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	edges := []graph.Edge{
		{Source: "a", Target: "b"},
		{Source: "b", Target: "c"},
		{Source: "a", Target: "c"},
		{Source: "c", Target: "a"},
		{Source: "c", Target: "d"},
	}
	idx := graph.NewIndex(nodes, edges)
	children := BreakCycles(idx)
	if slices.Contains(children["c"], "a") {
		t.Error("back edge c->a not removed")
	}
	ranks := AssignRanks(idx, children)
	want := map[string]int{"a": 0, "b": 1, "c": 2, "d": 3}
	for id, r := range want {
		if ranks[id] != r {
			t.Errorf("rank[%s] = %d, want %d", id, ranks[id], r)
		}
	}
}

func TestOrderingRemovesCrossing(t *testing.T) {
	// a->y and b->x cross in input order; one sweep uncrosses them.
	nodes := []graph.Node{{ID: "a"}, {ID: "b"}, {ID: "x"}, {ID: "y"}}
	edges := []graph.Edge{{Source: "a", Target: "y"}, {Source: "b", Target: "x"}}
	idx := graph.NewIndex(nodes, edges)
	children := BreakCycles(idx)
	orders := OrderRanks(idx, children, AssignRanks(idx, children))
	if got := countCrossings(orders, children); got != 0 {
		t.Errorf("crossings = %d, orders %v", got, orders)
	}
}

func TestPinnedRestored(t *testing.T) {
	nodes, edges := rootTwoChildren()
	nodes[1].Position = &graph.Position{X: -999, Y: 5}
	out, err := Layout(context.Background(), nodes, edges, DefaultParams(), map[string]bool{"left": true})
	if err != nil {
		t.Fatal(err)
	}
	if *out[1].Position != (graph.Position{X: -999, Y: 5}) {
		t.Errorf("pinned position = %v", out[1].Position)
	}
	if nodes[0].Position != nil {
		t.Error("input modified")
	}
}

func TestValidate(t *testing.T) {
	tests := []Params{
		{Direction: "diagonal", RankSeparation: 1, NodeSeparation: 1},
		{Direction: TopBottom, RankSeparation: 0, NodeSeparation: 1},
	}
	for _, p := range tests {
		if err := p.Validate(); !errors.Is(err, errors.ErrCodeInvalidParams) {
			t.Errorf("Validate(%+v) = %v", p, err)
		}
	}
}

func TestEmpty(t *testing.T) {
	out, err := Layout(context.Background(), nil, nil, DefaultParams(), nil)
	if err != nil || len(out) != 0 {
		t.Errorf("Layout(empty) = %v, %v", out, err)
	}
}
