package route

import (
	"context"
	"reflect"
	"testing"

	"github.com/matzehuels/ontoflow/pkg/graph"
)

func at(id string, x, y float64) graph.Node {
	return graph.Node{ID: id, Position: &graph.Position{X: x, Y: y}}
}

// clears reports whether every segment of path avoids the padded box of n.
func clears(path []graph.Position, n graph.Node, p Params) bool {
	hw, hh := p.NodeWidth/2+p.ObstaclePadding, p.NodeHeight/2+p.ObstaclePadding
	c := *n.Position
	box := Box{MinX: c.X - hw, MinY: c.Y - hh, MaxX: c.X + hw, MaxY: c.Y + hh}
	for i := 0; i+1 < len(path); i++ {
		if _, hit := SegmentHits(path[i], path[i+1], box); hit {
			return false
		}
	}
	return true
}

func TestRoutes(t *testing.T) {
	p := DefaultParams()
	edge := []graph.Edge{{ID: "e", Source: "a", Target: "b"}}

	tests := []struct {
		name      string
		blocker   graph.Node
		wantLen   int
		wantBelow bool
	}{
		{"direct", at("x", 200, 300), 2, false},
		{"collinear", at("x", 200, 0), 4, false},
		{"offset", at("x", 200, 10), 4, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes := []graph.Node{at("a", 0, 0), at("b", 400, 0), tt.blocker}
			routes, err := Routes(context.Background(), nodes, edge, p)
			if err != nil {
				t.Fatal(err)
			}
			path := routes["e"]
			if len(path) != tt.wantLen {
				t.Fatalf("len(path) = %d, want %d: %v", len(path), tt.wantLen, path)
			}
			if path[0] != (graph.Position{}) || path[len(path)-1] != (graph.Position{X: 400}) {
				t.Errorf("path endpoints = %v, %v", path[0], path[len(path)-1])
			}
			if !clears(path, tt.blocker, p) {
				t.Errorf("path %v crosses blocker", path)
			}
			for _, wp := range path[1 : len(path)-1] {
				if below := wp.Y < 0; below != tt.wantBelow {
					t.Errorf("waypoint %v: below = %v, want %v", wp, below, tt.wantBelow)
				}
			}
		})
	}
}

func TestRoutesSkipsDanglingEdges(t *testing.T) {
	nodes := []graph.Node{at("a", 0, 0)}
	edges := []graph.Edge{{ID: "e", Source: "a", Target: "ghost"}}
	routes, err := Routes(context.Background(), nodes, edges, DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := routes["e"]; ok {
		t.Error("dangling edge should not be routed")
	}
}

func TestRoutesDeterministic(t *testing.T) {
	var nodes []graph.Node
	var edges []graph.Edge
	for i := range 12 {
		id := string(rune('a' + i))
		nodes = append(nodes, at(id, float64(i%4)*220, float64(i/4)*140))
		if i > 0 {
			edges = append(edges, graph.Edge{ID: "e" + id, Source: "a", Target: id})
		}
	}
	p := DefaultParams()
	p.PathSmoothing = 0.5
	first, err := Routes(context.Background(), nodes, edges, p)
	if err != nil {
		t.Fatal(err)
	}
	for range 5 {
		again, _ := Routes(context.Background(), nodes, edges, p)
		if !reflect.DeepEqual(first, again) {
			t.Fatal("routes differ between runs")
		}
	}
}

func TestRoutesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	nodes := []graph.Node{at("a", 0, 0), at("b", 400, 0)}
	edges := []graph.Edge{{ID: "e", Source: "a", Target: "b"}}
	if _, err := Routes(ctx, nodes, edges, DefaultParams()); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestSmooth(t *testing.T) {
	path := []graph.Position{{X: 0, Y: 0}, {X: 100, Y: 100}, {X: 200, Y: 0}}

	if got := Smooth(path, 0); !reflect.DeepEqual(got, path) {
		t.Errorf("Smooth(0) changed path: %v", got)
	}
	straight := []graph.Position{{}, {X: 10}}
	if got := Smooth(straight, 1); !reflect.DeepEqual(got, straight) {
		t.Errorf("two-point path changed: %v", got)
	}

	got := Smooth(path, 1)
	if len(got) != 10 {
		t.Errorf("len = %d, want 10", len(got))
	}
	if got[0] != path[0] || got[len(got)-1] != path[2] {
		t.Errorf("endpoints moved: %v", got)
	}
	for _, q := range got {
		if q == path[1] {
			t.Errorf("corner %v survived smoothing", q)
		}
	}
}

func TestValidate(t *testing.T) {
	p := DefaultParams()
	p.ObstaclePadding = -1
	if err := p.Validate(); err == nil {
		t.Error("negative padding accepted")
	}
	if err := DefaultParams().Validate(); err != nil {
		t.Error(err)
	}
}
