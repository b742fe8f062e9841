package radial

import (
	"context"
	"math"
	"testing"

	"github.com/matzehuels/ontoflow/pkg/errors"
	"github.com/matzehuels/ontoflow/pkg/graph"
)

const eps = 1e-9

func radiusOf(p graph.Position) float64 { return math.Hypot(p.X, p.Y) }

func TestRings(t *testing.T) {
	nodes := []graph.Node{{ID: "c"}, {ID: "a"}, {ID: "b"}, {ID: "up"}, {ID: "island"}}
	edges := []graph.Edge{
		{Source: "c", Target: "a"},
		{Source: "c", Target: "b"},
		{Source: "up", Target: "a"},
	}
	out, err := Layout(context.Background(), nodes, edges, DefaultParams(), nil)
	if err != nil {
		t.Fatal(err)
	}
	pos := graph.Positions(out)
	want := map[string]float64{"c": 0, "a": 150, "b": 150, "up": 300, "island": 450}
	for id, r := range want {
		if got := radiusOf(pos[id]); math.Abs(got-r) > eps {
			t.Errorf("radius(%s) = %v, want %v", id, got, r)
		}
	}
	// Two ring-1 siblings are spread evenly: opposite sides.
	if math.Abs(pos["a"].X+pos["b"].X) > eps || math.Abs(pos["a"].Y+pos["b"].Y) > eps {
		t.Errorf("siblings not opposite: %v %v", pos["a"], pos["b"])
	}
}

func TestCenterSelection(t *testing.T) {
	nodes := []graph.Node{{ID: "x"}, {ID: "root"}}
	edges := []graph.Edge{{Source: "root", Target: "x"}}

	out, _ := Layout(context.Background(), nodes, edges, DefaultParams(), nil)
	if radiusOf(*out[1].Position) > eps {
		t.Errorf("default centre should be the source node, got %v", out[1].Position)
	}

	p := DefaultParams()
	p.Center = "x"
	out, _ = Layout(context.Background(), nodes, edges, p, nil)
	if radiusOf(*out[0].Position) > eps {
		t.Errorf("explicit centre not at origin: %v", out[0].Position)
	}

	p.Center = "ghost"
	if _, err := Layout(context.Background(), nodes, edges, p, nil); !errors.Is(err, errors.ErrCodeUnknownNode) {
		t.Errorf("err = %v, want UNKNOWN_NODE", err)
	}
}

func TestAngleOffset(t *testing.T) {
	nodes := []graph.Node{{ID: "c"}, {ID: "a"}}
	edges := []graph.Edge{{Source: "c", Target: "a"}}
	p := DefaultParams()
	p.AngleOffset = 90
	out, _ := Layout(context.Background(), nodes, edges, p, nil)
	a := *out[1].Position
	if math.Abs(a.X) > 1e-6 || math.Abs(a.Y-150) > 1e-6 {
		t.Errorf("offset 90 should place a at (0,150), got %v", a)
	}
}

func TestEmptyAndInvalid(t *testing.T) {
	if out, err := Layout(context.Background(), nil, nil, DefaultParams(), nil); err != nil || len(out) != 0 {
		t.Errorf("empty = %v, %v", out, err)
	}
	if err := (Params{}).Validate(); !errors.Is(err, errors.ErrCodeInvalidParams) {
		t.Errorf("Validate(zero) = %v", err)
	}
}
